package replay

import (
	"math/rand"

	"github.com/pzielke/ghosthand/internal/pattern"
)

// Sample selects a random subset of the pattern's points for one replay
// cycle. The first and last points are always kept, as are click events,
// so every replay starts and ends at the recorded coordinates and every
// recorded action is performed. Interior move points are kept
// independently with InteriorKeepProbability, so no two replays trace
// the exact same path.
func Sample(rnd *rand.Rand, p pattern.Pattern) []pattern.Point {
	out := make([]pattern.Point, 0, len(p))
	last := len(p) - 1

	for i, pt := range p {
		if i == 0 || i == last || pt.IsClick() || rnd.Float64() < InteriorKeepProbability {
			out = append(out, pt)
		}
	}
	return out
}
