package domain

import "fmt"

// MatchOutcome classifies the result of running one probe frame against the
// catalog. NoFace and Ambiguous come from the detector's face count and are
// distinct from NoMatch, which means a single face was found but nobody in
// the catalog was close enough.
type MatchOutcome string

const (
	OutcomeMatched   MatchOutcome = "matched"
	OutcomeNoMatch   MatchOutcome = "no_match"
	OutcomeNoFace    MatchOutcome = "no_face"
	OutcomeAmbiguous MatchOutcome = "ambiguous"
)

// MatchResult is the tagged result of a recognition attempt. IdentityID and
// Distance are only meaningful when Outcome is OutcomeMatched.
type MatchResult struct {
	Outcome    MatchOutcome `json:"outcome"`
	IdentityID int64        `json:"identity_id,omitempty"`
	Distance   float64      `json:"distance,omitempty"`
}

// Matched reports whether the result carries an authenticated identity.
func (r MatchResult) Matched() bool {
	return r.Outcome == OutcomeMatched
}

func (r MatchResult) String() string {
	if r.Matched() {
		return fmt.Sprintf("matched identity %d (distance %.3f)", r.IdentityID, r.Distance)
	}
	return string(r.Outcome)
}

// NoMatch is the zero-value-adjacent result used when the catalog is empty or
// no candidate clears the tolerance.
var NoMatch = MatchResult{Outcome: OutcomeNoMatch}
