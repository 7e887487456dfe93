package synth

import (
	"math/rand/v2"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
)

// InjectMissing independently nulls each cell of t with probability p and
// returns how many cells were nulled. Every column is eligible. p <= 0 leaves
// the table untouched and consumes no randomness.
func InjectMissing(r *rand.Rand, t *dataset.Table, p float64) int {
	if p <= 0 || t == nil {
		return 0
	}
	nulled := 0
	for row := 0; row < t.Rows; row++ {
		for j := range t.Columns {
			if p >= 1 || r.Float64() < p {
				if !t.Columns[j].IsNull(row) {
					nulled++
				}
				t.Columns[j].SetNull(row)
			}
		}
	}
	return nulled
}
