package match

import (
	"math"

	"github.com/hostelgate/hostelgate/internal/domain"
)

// DefaultTolerance is the distance ceiling for two embeddings to count as the
// same person. Lower is stricter. This mirrors the conventional 0.6 used by
// dlib-style 128-d face embeddings.
const DefaultTolerance = 0.6

// Catalog is a point-in-time snapshot of known embeddings keyed by identity
// ID, produced by the record store. It is a copy, so matching never needs the
// store's lock.
type Catalog map[int64][]float64

// EuclideanDistance computes the L2 distance between two vectors.
// Mismatched or empty vectors report the maximum distance rather than
// panicking, so a corrupt catalog entry can never match.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match runs the probe embedding against every candidate in the catalog and
// returns the best match within tolerance. Among all candidates that clear
// the tolerance the minimum distance wins; insertion order never decides.
// An empty catalog short-circuits to NoMatch without computing any distance.
func Match(probe []float64, catalog Catalog, tolerance float64) domain.MatchResult {
	if len(catalog) == 0 {
		return domain.NoMatch
	}

	best := domain.NoMatch
	for id, candidate := range catalog {
		d := EuclideanDistance(probe, candidate)
		if d > tolerance {
			continue
		}
		if !best.Matched() || d < best.Distance {
			best = domain.MatchResult{
				Outcome:    domain.OutcomeMatched,
				IdentityID: id,
				Distance:   d,
			}
		}
	}
	return best
}
