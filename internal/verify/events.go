package verify

import "github.com/avetisyan-lab/citewell/internal/model"

// EventType tags the variants streamed by a verification session
type EventType string

const (
	// EventCandidatesFound fires when a round's search returns, before
	// any candidate has been verified.
	EventCandidatesFound EventType = "candidates_found"

	// EventVerificationUpdate fires once per candidate as its judgment
	// completes. No ordering guarantee between candidates of one round.
	EventVerificationUpdate EventType = "verification_update"

	// EventRoundComplete fires after every candidate of the round has
	// been judged and partitioned.
	EventRoundComplete EventType = "round_complete"
)

// Event is one tagged progress record from a verification session.
// Consumers range over Session.Events; the channel closes when the
// session finishes or is cancelled.
type Event struct {
	Type  EventType
	Round int

	// CandidatesFound
	Candidates []model.Snippet

	// VerificationUpdate
	SnippetID    string
	Verification *model.VerificationResult

	// RoundComplete
	RoundRecord *model.VerificationRound
}
