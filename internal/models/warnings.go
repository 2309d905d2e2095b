package models

// WarningKind is the closed taxonomy of structured, non-fatal pipeline
// outcomes. Everything here is a value handed back to the conversation layer,
// never a panic or an untyped error string.
type WarningKind string

const (
	// WarnBackendUnavailable: a classifier backend failed or timed out and
	// contributed no vote. Tolerated via partial voting.
	WarnBackendUnavailable WarningKind = "backend_unavailable"
	// WarnAmbiguousInput: intent or date/time could not be resolved with
	// sufficient confidence; the user should be asked, never guessed for.
	WarnAmbiguousInput WarningKind = "ambiguous_input"
	// WarnPastSchedule: the resolved notify moment is unrecoverably past.
	WarnPastSchedule WarningKind = "past_schedule"
	// WarnMalformedExtraction: AI output violated the extraction schema and
	// the regex fallback was used instead.
	WarnMalformedExtraction WarningKind = "malformed_extraction"
	// WarnDayNameDateMismatch: the weekday the user named contradicts the
	// date that was resolved; requires confirmation, never silent resolution.
	WarnDayNameDateMismatch WarningKind = "day_name_date_mismatch"
)

// Warning is a structured non-fatal result attached to a pipeline run.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}
