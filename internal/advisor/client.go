// Package advisor turns a finished scenario analysis into a short narrative
// recommendation using a hosted language model. Advice is optional: callers
// treat any error as "no advice" and keep the analysis.
package advisor

import (
	"context"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
)

// Advice is the structured output of a successful Advise call.
type Advice struct {
	// Recommendation is a 2–3 sentence plain-English suggestion.
	Recommendation string `json:"recommendation"`

	// Considerations are short points the user should weigh, most important
	// first. May be empty.
	Considerations []string `json:"considerations"`
}

// Advisor is the interface the API and CLI use to request advice.
// Tests inject a stub that returns canned responses.
type Advisor interface {
	// Advise returns advice for one analysed scenario.
	//
	// Implementations must be safe to call concurrently. A non-nil error means
	// the call failed; callers return the analysis without advice.
	Advise(ctx context.Context, a analysis.Analysis) (Advice, error)
}
