package synth

import "math/rand/v2"

// DefaultLabels is the label set used for every categorical column.
var DefaultLabels = []string{"A", "B", "C", "D", "E", "F"}

// SampleLabels draws n labels uniformly with replacement. An empty label set
// or n <= 0 yields an empty slice.
func SampleLabels(r *rand.Rand, labels []string, n int) []string {
	if n <= 0 || len(labels) == 0 {
		return []string{}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = labels[r.IntN(len(labels))]
	}
	return out
}
