package synth

import (
	"math/rand/v2"

	"github.com/spaolacci/murmur3"
)

// Streams hands out independent random sources keyed by a label, so each
// column draws from its own deterministic stream for a given seed. Adding a
// column never shifts the values of another.
type Streams struct {
	seed uint64
}

// NewStreams returns Streams for seed. A zero seed picks a random one.
func NewStreams(seed uint64) Streams {
	if seed == 0 {
		seed = rand.Uint64() | 1
	}
	return Streams{seed: seed}
}

// Seed returns the effective seed.
func (s Streams) Seed() uint64 { return s.seed }

// For returns the source for label.
func (s Streams) For(label string) *rand.Rand {
	h := murmur3.Sum64WithSeed([]byte(label), uint32(s.seed^(s.seed>>32)))
	return rand.New(rand.NewPCG(s.seed, h))
}
