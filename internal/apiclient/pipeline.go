package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

const (
	headerRequestID     = "X-Request-ID"
	headerAuthorization = "Authorization"
)

var errBodyTooLarge = errors.New("response body exceeds limit")

// build runs the request-id and auth-attach stages. Errors returned here are
// construction failures.
func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	attachRequestID(httpReq)
	if err := c.attachAuth(httpReq); err != nil {
		return nil, err
	}
	return httpReq, nil
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", c.baseURL)
	}
	target := base.JoinPath(c.apiPrefix, path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	return target.String(), nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Multipart != nil {
		return encodeMultipart(req.Multipart)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(payload), "application/json", nil
}

func encodeMultipart(m *Multipart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("encode form field %s: %w", f.Name, err)
		}
	}
	for _, f := range m.Files {
		part, err := createFilePart(w, f)
		if err != nil {
			return nil, "", fmt.Errorf("encode file part %s: %w", f.FieldName, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("encode file part %s: %w", f.FieldName, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func createFilePart(w *multipart.Writer, f FilePart) (io.Writer, error) {
	if f.ContentType == "" {
		return w.CreateFormFile(f.FieldName, f.Filename)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.FieldName, f.Filename))
	h.Set("Content-Type", f.ContentType)
	return w.CreatePart(h)
}

// attachRequestID is the request-id stage.
func attachRequestID(r *http.Request) {
	id := requestcontext.RequestID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	r.Header.Set(headerRequestID, id)
}

// attachAuth is the auth-attach stage. The token is read at this instant;
// with no token the request goes out unauthenticated.
func (c *Client) attachAuth(r *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, ok, err := c.tokens.Token(r.Context())
	if err != nil {
		return err
	}
	if ok {
		r.Header.Set(headerAuthorization, "Bearer "+token)
	}
	return nil
}

type result struct {
	status int
	body   []byte
	err    error
}

// dispatch sends the request under the effective timeout and reads the body.
func (c *Client) dispatch(r *http.Request, timeout time.Duration) result {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "apiclient.dispatch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.String("request.id", r.Header.Get(headerRequestID)),
		),
	)
	defer span.End()

	resp, err := c.httpClient.Do(r.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return result{err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err == nil && len(body) > maxBodyBytes {
		err = errBodyTooLarge
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return result{status: resp.StatusCode, err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return result{status: resp.StatusCode, body: body}
}

// classify maps a dispatch result onto the failure taxonomy. A nil return
// means the response is a success and may be unwrapped.
func classify(res result) *Error {
	if res.err != nil {
		if isTimeout(res.err) {
			return newError(KindTimeout, MsgTimeout, 0, res.err)
		}
		return newError(KindNetworkOrServer, MsgNetwork, res.status, res.err)
	}
	if res.status >= http.StatusBadRequest {
		return newError(KindNetworkOrServer, serverMessage(res.body), res.status,
			fmt.Errorf("server responded %d", res.status))
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// serverMessage prefers the message field of an error body.
func serverMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return MsgNetwork
	}
	msg := gjson.GetBytes(body, "message")
	if msg.Type != gjson.String || msg.Str == "" {
		return MsgNetwork
	}
	return msg.Str
}

// unwrap decodes the payload into out.
func unwrap(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
