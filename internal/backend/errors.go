package backend

import (
	"fmt"

	"go-jobposting-collector/internal/models"
)

// Kind classifies a failed submission.
type Kind string

const (
	KindDuplicate       Kind = "duplicate"
	KindRateLimited     Kind = "rate-limited"
	KindUpstreamTimeout Kind = "upstream-timeout"
	KindUnauthorized    Kind = "unauthorized"
	KindServer          Kind = "server"
	KindUnreachable     Kind = "unreachable"
	KindInvalidResponse Kind = "invalid-response"
)

// SubmitError is returned by Client.Submit. Submissions are never retried
// automatically.
type SubmitError struct {
	Kind    Kind
	Status  int
	Message string
	// Existing is set on a duplicate when the server reports the stored record.
	Existing *models.ExistingRecordRef
	Cause    error
}

func (e *SubmitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (status %d): %s: %v", e.Kind, e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Message)
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the reviewer.
func (e *SubmitError) UserMessage() string {
	switch e.Kind {
	case KindDuplicate:
		return "Job posting already saved. Submit again to update it."
	case KindRateLimited:
		return "Record store rate limit reached. Retry in a few seconds."
	case KindUpstreamTimeout:
		return "Record store timed out. Please retry."
	case KindUnauthorized:
		return "Failed to connect to the record store. Check API credentials and retry."
	case KindUnreachable:
		return "Backend server not running. Please start it with `go run ./cmd/server`."
	case KindInvalidResponse:
		return "Backend server returned an invalid response. Check server logs."
	default:
		if e.Message != "" {
			return e.Message
		}
		return "Failed to save job posting"
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case 409:
		return KindDuplicate
	case 429:
		return KindRateLimited
	case 504:
		return KindUpstreamTimeout
	case 401:
		return KindUnauthorized
	default:
		return KindServer
	}
}
