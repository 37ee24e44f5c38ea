package chat

// errors.go defines the typed error surface shared by the orchestrator, the
// LLM adapters, and the HTTP transport. Every failure that can cross the
// package boundary carries an ErrorKind so the transport can pick a status
// code and the widget can decide what to show the visitor, without parsing
// error strings.

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a chat-turn failure.
type ErrorKind string

const (
	// KindValidation: the request itself is bad (e.g. empty message).
	// Surfaced verbatim to the visitor, not retryable.
	KindValidation ErrorKind = "validation"

	// KindConfiguration: missing API key, missing model, or similar.
	// Actionable by the site operator, not by the visitor.
	KindConfiguration ErrorKind = "configuration"

	// KindUnsupportedProvider: a provider id outside the known set.
	KindUnsupportedProvider ErrorKind = "unsupported_provider"

	// KindUpstreamTransport: network or timeout failure talking to a
	// vendor. Safe to retry the same turn.
	KindUpstreamTransport ErrorKind = "upstream_transport"

	// KindUpstreamVendor: the vendor API answered with an explicit error
	// payload. The vendor's own message is carried where safe.
	KindUpstreamVendor ErrorKind = "upstream_vendor"

	// KindUpstreamParse: the vendor response could not be decoded.
	// Treated as a bug signal; the raw payload is logged for diagnosis.
	KindUpstreamParse ErrorKind = "upstream_parse"
)

// Error is the structured failure returned across the chat boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds a chat error with no underlying cause.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds a chat error around an underlying cause.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the ErrorKind from err, walking the wrap chain.
// Unclassified errors report as upstream_transport, the safest default for
// a caller deciding whether a retry could help.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUpstreamTransport
}

// PublicMessage returns the operator/visitor-safe message for err.
func PublicMessage(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "An unexpected error occurred."
}
