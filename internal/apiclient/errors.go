package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// User-facing messages for classified failures.
const (
	MsgTimeout = "请求超时，请稍后重试"
	MsgNetwork = "网络错误"
)

// Kind categorizes a failed request.
type Kind string

const (
	// KindTimeout: the request exceeded its time limit.
	KindTimeout Kind = "timeout"
	// KindNetworkOrServer: transport failure, error status or unreadable body.
	KindNetworkOrServer Kind = "network_or_server"
)

// Error is the classified failure returned for every request that reached
// dispatch and did not succeed.
type Error struct {
	Kind    Kind
	Message string
	// Code is the HTTP status when a response was received, 0 otherwise.
	Code       int
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func newError(kind Kind, message string, code int, err error) *Error {
	return &Error{Kind: kind, Message: message, Code: code, Underlying: err}
}

// AsError extracts a classified request error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsTimeout reports whether err is a classified timeout.
func IsTimeout(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == KindTimeout
}

// IsUnauthorized reports whether the server answered 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Code == http.StatusUnauthorized
}
