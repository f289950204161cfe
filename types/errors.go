package types

import "errors"

// Failure classes the service distinguishes. Wrap with
// fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	// ErrInvalidInput marks an empty or malformed question or document,
	// rejected before any network call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceUnavailable marks an unreachable, rate-limited or failing
	// upstream service (embedding, vector index, generation). Retryable
	// by the caller; the core never retries on its own.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout marks an exceeded end-to-end request budget.
	ErrTimeout = errors.New("request timed out")

	// ErrIngest marks a document that could not be read or held no text
	// during ingestion. Per-document: the batch logs it and continues.
	ErrIngest = errors.New("document ingest failed")
)

// Messages shown to end users. Raw upstream error text stays in the
// server logs and never reaches the client.
const (
	MsgInvalidQuestion = "Please provide a non-empty question."
	MsgTimeout         = "Your request timed out. Please try again."
	MsgUnavailable     = "Sorry, we're having trouble processing your request. Please try again later."
)

// UserFacingMessage maps an internal failure onto the message shown to
// the end user.
func UserFacingMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return MsgInvalidQuestion
	case errors.Is(err, ErrTimeout):
		return MsgTimeout
	default:
		return MsgUnavailable
	}
}
