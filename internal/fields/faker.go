package fields

import (
	"fmt"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker is the default Source, backed by gofakeit. It is not safe for
// concurrent use.
type Faker struct {
	f *gofakeit.Faker
}

// NewFaker returns a Faker drawing from r, so a seeded r gives a
// reproducible sequence of values.
func NewFaker(r *rand.Rand) *Faker {
	return &Faker{f: gofakeit.NewFaker(r, false)}
}

// Value implements Source. Unknown kinds yield an empty string.
func (g *Faker) Value(k Kind) string {
	switch k {
	case Name:
		return g.f.Name()
	case Email:
		return g.f.Email()
	case Address:
		return g.address()
	case Phone:
		return g.f.PhoneFormatted()
	case Company:
		return g.f.Company()
	case Job:
		return g.f.JobTitle()
	case CreditCard:
		return g.creditCard()
	default:
		return ""
	}
}

// address is a free-text, two-line postal address.
func (g *Faker) address() string {
	street := g.f.Street()
	if g.f.Number(0, 3) == 0 {
		street += fmt.Sprintf(" Apt. %d", g.f.Number(1, 999))
	}
	return fmt.Sprintf("%s\n%s, %s %s", street, g.f.City(), g.f.StateAbr(), g.f.Zip())
}

// creditCard renders the multi-line "full" card format:
// issuer, holder, number with expiry, and security code.
// The expiry is drawn from the stream rather than the wall clock.
func (g *Faker) creditCard() string {
	cc := g.f.CreditCard()
	expiry := fmt.Sprintf("%02d/%02d", g.f.Number(1, 12), g.f.Number(25, 34))
	return fmt.Sprintf("%s\n%s\n%s %s\nCVC: %s\n", cc.Type, g.f.Name(), cc.Number, expiry, cc.Cvv)
}
