// Package apperr defines the closed set of error kinds used across the
// application. Every failure surfaced to a user action is one of these
// kinds; anything else is a programming error.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindConfiguration means a required credential or endpoint is unset.
	// Detected before any network call; never retried.
	KindConfiguration Kind = iota
	// KindRetrieval means a non-2xx or transport failure from an external
	// provider.
	KindRetrieval
	// KindContractViolation means a completion response did not parse as the
	// expected JSON shape. Downstream rendering degrades instead of failing.
	KindContractViolation
	// KindIndexingLag means an uploaded document is not yet visible in the
	// search index. Expected transient state, not a hard error.
	KindIndexingLag
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindRetrieval:
		return "retrieval"
	case KindContractViolation:
		return "contract_violation"
	case KindIndexingLag:
		return "indexing_lag"
	default:
		return "unknown"
	}
}

// Error is an application error carrying a kind, a message and, for
// retrieval errors, the provider-supplied HTTP status code and body excerpt.
type Error struct {
	Kind    Kind
	Message string
	Status  int    // provider HTTP status, 0 when not applicable
	Body    string // provider response body excerpt, may be empty
	Err     error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s: %s (status %d: %s)", e.Kind, e.Message, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Configuration creates a configuration error.
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// Retrieval creates a retrieval error wrapping a transport failure.
func Retrieval(message string, err error) *Error {
	return &Error{Kind: KindRetrieval, Message: message, Err: err}
}

// RetrievalStatus creates a retrieval error carrying the provider status
// code and response body.
func RetrievalStatus(message string, status int, body string) *Error {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &Error{Kind: KindRetrieval, Message: message, Status: status, Body: body}
}

// ContractViolation creates a contract-violation error.
func ContractViolation(message string, err error) *Error {
	return &Error{Kind: KindContractViolation, Message: message, Err: err}
}

// IndexingLag creates an indexing-lag error.
func IndexingLag(message string) *Error {
	return &Error{Kind: KindIndexingLag, Message: message}
}

// KindOf returns the kind of err and true when err is an application error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
