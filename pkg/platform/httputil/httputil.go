// Package httputil writes the backend's result envelope and translates
// domain errors into HTTP responses.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
)

// MsgInternal is shown instead of the details of an internal failure.
const MsgInternal = "服务器内部错误"

// Result is the envelope every API response uses.
type Result struct {
	Success bool   `json:"success"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 success envelope.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Result{Success: true, Code: http.StatusOK, Message: message, Data: data})
}

// WriteError writes a failure envelope. Rejected business operations keep a
// 200 status and report success=false, as the backend does; every other
// domain code maps to an HTTP error status. Internal details are never sent.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.Is(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, Result{Code: http.StatusInternalServerError, Message: MsgInternal})
		return
	}
	status := StatusFor(de.Code)
	message := de.Message
	if status == http.StatusInternalServerError {
		message = MsgInternal
	}
	code := status
	if de.Code == dErrors.CodeRejected {
		code = http.StatusInternalServerError
	}
	WriteJSON(w, status, Result{Code: code, Message: message})
}

// StatusFor maps a domain code to the HTTP status it is served with.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeRejected:
		return http.StatusOK
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
