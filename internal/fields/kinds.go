// Package fields generates personal-information style text values
// (names, emails, addresses, ...). Values are syntactically plausible and
// independent across calls; they are not unique and not statistically realistic.
package fields

import (
	"fmt"
	"strings"
)

// Kind is a personal-information field type. Its string value is also the
// output column name.
type Kind string

const (
	Name       Kind = "name"
	Email      Kind = "email"
	Address    Kind = "address"
	Phone      Kind = "phone"
	Company    Kind = "company"
	Job        Kind = "job"
	CreditCard Kind = "credit_card"
)

// AllKinds lists every supported kind in canonical order.
func AllKinds() []Kind {
	return []Kind{Name, Email, Address, Phone, Company, Job, CreditCard}
}

// ParseKind accepts the canonical names plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return Name, nil
	case "email":
		return Email, nil
	case "address":
		return Address, nil
	case "phone", "phone_number":
		return Phone, nil
	case "company":
		return Company, nil
	case "job", "job_title":
		return Job, nil
	case "credit_card", "creditcard", "credit-card", "cc":
		return CreditCard, nil
	default:
		return "", fmt.Errorf("unknown field kind: %q (use %s)", s, strings.Join(kindNames(), "|"))
	}
}

// ParseKinds parses each element of ss.
func ParseKinds(ss []string) ([]Kind, error) {
	out := make([]Kind, 0, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		k, err := ParseKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func kindNames() []string {
	ks := AllKinds()
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return out
}

// Source produces one value per call for the requested kind.
type Source interface {
	Value(k Kind) string
}

// Column returns n values of kind k drawn from src.
func Column(src Source, k Kind, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = src.Value(k)
	}
	return out
}
