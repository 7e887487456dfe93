package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Distribution is the family a numeric column is drawn from. Parameters are
// fixed: Normal(0,1), Uniform[0,1), Exponential(mean 1), Lognormal(0,1).
type Distribution string

const (
	Normal      Distribution = "normal"
	Uniform     Distribution = "uniform"
	Exponential Distribution = "exponential"
	Lognormal   Distribution = "lognormal"
)

// Distributions lists the supported families in display order.
func Distributions() []Distribution {
	return []Distribution{Normal, Uniform, Exponential, Lognormal}
}

// ParseDistribution is case-insensitive and accepts a few short aliases.
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "gaussian", "norm":
		return Normal, nil
	case "uniform", "unif":
		return Uniform, nil
	case "exponential", "exp":
		return Exponential, nil
	case "lognormal", "log-normal", "lognorm":
		return Lognormal, nil
	default:
		return "", fmt.Errorf("unknown distribution: %q (use normal|uniform|exponential|lognormal)", s)
	}
}

// ParseDistributions parses a list of names.
func ParseDistributions(ss []string) ([]Distribution, error) {
	out := make([]Distribution, 0, len(ss))
	for _, s := range ss {
		d, err := ParseDistribution(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (d Distribution) valid() bool {
	switch d {
	case Normal, Uniform, Exponential, Lognormal:
		return true
	}
	return false
}

// Sample draws n independent values from d. n <= 0 yields an empty slice.
// Unknown families fall back to Normal; Request.Validate rejects them earlier.
func Sample(r *rand.Rand, d Distribution, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	switch d {
	case Uniform:
		for i := range out {
			out[i] = r.Float64()
		}
	case Exponential:
		for i := range out {
			out[i] = r.ExpFloat64()
		}
	case Lognormal:
		for i := range out {
			out[i] = math.Exp(r.NormFloat64())
		}
	default:
		for i := range out {
			out[i] = r.NormFloat64()
		}
	}
	return out
}
