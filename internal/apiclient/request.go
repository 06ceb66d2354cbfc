package apiclient

import (
	"net/http"
	"net/url"
	"time"
)

// Request is the outbound request envelope. Body is JSON-encoded; Multipart
// takes precedence when both are set.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Header    http.Header
	Body      any
	Multipart *Multipart
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Fields []Field
	Files  []FilePart
}

// Field is a plain form field.
type Field struct {
	Name  string
	Value string
}

// FilePart is a file attached under a form field.
type FilePart struct {
	FieldName   string
	Filename    string
	ContentType string
	Content     []byte
}

// Envelope mirrors the backend result body.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}
