package ojp

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind labels the failure classes surfaced to tool callers.
type ErrorKind string

const (
	ErrorKindValidation  ErrorKind = "ValidationError"
	ErrorKindTransport   ErrorKind = "TransportError"
	ErrorKindConnection  ErrorKind = "ConnectionError"
	ErrorKindProtocol    ErrorKind = "ProtocolError"
	ErrorKindParse       ErrorKind = "ParseError"
	ErrorKindUnknownMode ErrorKind = "UnknownModeError"
)

// ErrorInfo is the error shape embedded in result envelopes. It doubles as a
// regular Go error so the same value can travel through error returns and
// still serialise with a stable kind for the caller.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind" groups:"tool"`
	Message string    `json:"message" groups:"tool"`
}

func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidationError reports an input rejected before anything touched the
// network. The field name leads the message so callers can repair the call.
func NewValidationError(field string, format string, args ...interface{}) *ErrorInfo {
	return &ErrorInfo{
		Kind:    ErrorKindValidation,
		Message: fmt.Sprintf("%s: %s", field, fmt.Sprintf(format, args...)),
	}
}

// NewTransportError reports a non-success HTTP exchange. The body excerpt is
// already trimmed by the caller.
func NewTransportError(status int, bodyExcerpt string) *ErrorInfo {
	message := fmt.Sprintf("OJP endpoint returned status %d", status)
	if bodyExcerpt != "" {
		message = fmt.Sprintf("%s: %s", message, bodyExcerpt)
	}

	return &ErrorInfo{Kind: ErrorKindTransport, Message: message}
}

// NewConnectionError reports a request that never produced an HTTP response,
// including how long was spent waiting.
func NewConnectionError(elapsed time.Duration, cause error) *ErrorInfo {
	return &ErrorInfo{
		Kind:    ErrorKindConnection,
		Message: fmt.Sprintf("no response from OJP endpoint after %s: %s", elapsed.Round(time.Millisecond), cause),
	}
}

// NewProtocolError reports a well-formed OJP response that carries a service
// level fault instead of results.
func NewProtocolError(message string) *ErrorInfo {
	if message == "" {
		message = "service reported an unspecified error"
	}

	return &ErrorInfo{Kind: ErrorKindProtocol, Message: message}
}

// NewParseError reports a response body that could not be understood as an
// OJP document.
func NewParseError(format string, args ...interface{}) *ErrorInfo {
	return &ErrorInfo{Kind: ErrorKindParse, Message: fmt.Sprintf(format, args...)}
}

// NewUnknownModeError reports a mode code with no entry in the fixed lookup
// tables. These fail the surrounding entry rather than being guessed at.
func NewUnknownModeError(element string, code string) *ErrorInfo {
	return &ErrorInfo{
		Kind:    ErrorKindUnknownMode,
		Message: fmt.Sprintf("%s: no mapping for mode code %q", element, code),
	}
}

// AsErrorInfo extracts the ErrorInfo from err, or wraps err under the given
// kind when it is some other error type.
func AsErrorInfo(err error, fallback ErrorKind) *ErrorInfo {
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info
	}

	return &ErrorInfo{Kind: fallback, Message: err.Error()}
}
