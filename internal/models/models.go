package models

// Intent is the closed vocabulary of actions a message can be classified into.
type Intent string

const (
	IntentCreateEvent    Intent = "create_event"
	IntentCreateReminder Intent = "create_reminder"
	IntentListEvents     Intent = "list_events"
	IntentDeleteEvent    Intent = "delete_event"
	IntentUpdateEvent    Intent = "update_event"
	IntentSearchEvent    Intent = "search_event"
	IntentAddComment     Intent = "add_comment"
	IntentUnknown        Intent = "unknown"
)

// ParseIntent maps a backend label onto the closed vocabulary. Anything
// outside the vocabulary collapses to IntentUnknown rather than leaking
// free-form labels into the pipeline.
func ParseIntent(label string) Intent {
	switch Intent(label) {
	case IntentCreateEvent, IntentCreateReminder, IntentListEvents,
		IntentDeleteEvent, IntentUpdateEvent, IntentSearchEvent, IntentAddComment:
		return Intent(label)
	default:
		return IntentUnknown
	}
}

// Destructive reports whether acting on this intent modifies or removes
// existing data. Destructive intents require higher classification confidence.
func (i Intent) Destructive() bool {
	return i == IntentDeleteEvent || i == IntentUpdateEvent
}

// ClassificationVote is a single backend's opinion. Votes are ephemeral and
// discarded after aggregation.
type ClassificationVote struct {
	ModelID    string  `json:"model_id"`
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// ClassificationResult is the aggregated decision of the ensemble, immutable
// once produced.
type ClassificationResult struct {
	Intent             Intent  `json:"intent"`
	Confidence         float64 `json:"confidence"`
	AgreementCount     int     `json:"agreement_count"`
	NeedsClarification bool    `json:"needs_clarification"`
}
