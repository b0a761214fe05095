package correlation

import "net/http"

// Outcome reports how a correlation attempt ended. Values mirror the HTTP
// status codes used in logs and status messages.
type Outcome int

const (
	// OutcomeMatched means the photo was linked to a race
	OutcomeMatched Outcome = http.StatusOK
	// OutcomeNoContent means no race could be found
	OutcomeNoContent Outcome = http.StatusNoContent
	// OutcomePartial means the race was linked but contestant details were missing
	OutcomePartial Outcome = http.StatusPartialContent
)

// String returns a readable name for the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNoContent:
		return "no-content"
	case OutcomePartial:
		return "partial"
	default:
		return "unknown"
	}
}

// Linked reports whether the outcome assigned a race to the photo
func (o Outcome) Linked() bool {
	return o == OutcomeMatched || o == OutcomePartial
}
