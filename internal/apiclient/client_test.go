package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/Liutianci99/grad-pilipala/internal/notify"
	"github.com/Liutianci99/grad-pilipala/internal/platform/metrics"
	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

type stubTokens struct {
	token string
	err   error
}

func (s *stubTokens) Token(context.Context) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	return s.token, s.token != "", nil
}

type ClientSuite struct {
	suite.Suite
	ctx      context.Context
	server   *httptest.Server
	handler  http.HandlerFunc
	hits     atomic.Int32
	tokens   *stubTokens
	notifier *notify.Recorder
	metrics  *metrics.Metrics
	client   *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.ctx = context.Background()
	s.hits.Store(0)
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":null}`))
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.handler(w, r)
	}))
	s.tokens = &stubTokens{}
	s.notifier = &notify.Recorder{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.client = s.newClient(Config{BaseURL: s.server.URL})
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) newClient(cfg Config) *Client {
	return New(cfg, s.tokens, s.notifier,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
}

func (s *ClientSuite) TestAuthAttach() {
	var gotAuth, gotPath string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}

	s.Run("token present is sent as bearer", func() {
		s.tokens.token = "abc"
		s.Require().NoError(s.client.Get(s.ctx, "/orders/my", nil, nil))
		s.Equal("Bearer abc", gotAuth)
		s.Equal("/api/orders/my", gotPath)
	})

	s.Run("token absent sends no header", func() {
		s.tokens.token = ""
		s.Require().NoError(s.client.Get(s.ctx, "/orders/my", nil, nil))
		s.Empty(gotAuth)
	})

	s.Run("token is read per call", func() {
		s.tokens.token = "first"
		s.Require().NoError(s.client.Get(s.ctx, "/x", nil, nil))
		s.Equal("Bearer first", gotAuth)
		s.tokens.token = "second"
		s.Require().NoError(s.client.Get(s.ctx, "/x", nil, nil))
		s.Equal("Bearer second", gotAuth)
	})
	s.Empty(s.notifier.Messages())
}

func (s *ClientSuite) TestRequestID() {
	var got string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{}`))
	}

	s.Run("propagates context request id", func() {
		ctx := requestcontext.WithRequestID(s.ctx, "req-123")
		s.Require().NoError(s.client.Get(ctx, "/x", nil, nil))
		s.Equal("req-123", got)
	})

	s.Run("generates one otherwise", func() {
		s.Require().NoError(s.client.Get(s.ctx, "/x", nil, nil))
		s.Len(got, 36)
	})
}

func (s *ClientSuite) TestUnwrapsPayload() {
	var gotQuery url.Values
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"success":true,"code":200,"message":"ok","data":{"id":7}}`))
	}

	var out Envelope[struct {
		ID int `json:"id"`
	}]
	err := s.client.Get(s.ctx, "/orders/my", url.Values{"page": {"2"}}, &out)

	s.Require().NoError(err)
	s.True(out.Success)
	s.Equal(7, out.Data.ID)
	s.Equal("2", gotQuery.Get("page"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RequestsTotal.WithLabelValues("ok")))
}

func (s *ClientSuite) TestPostEncodesJSON() {
	var gotType string
	var gotBody []byte
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}

	err := s.client.Post(s.ctx, "/mall/publish", map[string]any{"productId": 3}, nil)

	s.Require().NoError(err)
	s.Equal("application/json", gotType)
	s.JSONEq(`{"productId":3}`, string(gotBody))
}

func (s *ClientSuite) TestMultipart() {
	var field, filename, content string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		field = r.FormValue("productName")
		f, hdr, err := r.FormFile("image")
		if err == nil {
			filename = hdr.Filename
			b, _ := io.ReadAll(f)
			content = string(b)
		}
		_, _ = w.Write([]byte(`{}`))
	}

	err := s.client.Do(s.ctx, Request{
		Method: http.MethodPost,
		Path:   "/inventory/stock-in",
		Multipart: &Multipart{
			Fields: []Field{{Name: "productName", Value: "苹果"}},
			Files:  []FilePart{{FieldName: "image", Filename: "a.png", ContentType: "image/png", Content: []byte("png")}},
		},
	}, nil)

	s.Require().NoError(err)
	s.Equal("苹果", field)
	s.Equal("a.png", filename)
	s.Equal("png", content)
}

func (s *ClientSuite) TestTimeout() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
	client := s.newClient(Config{BaseURL: s.server.URL, Timeout: 50 * time.Millisecond})

	err := client.Get(s.ctx, "/orders/delivery-batch", nil, nil)

	s.Require().Error(err)
	s.True(IsTimeout(err))
	apiErr, ok := AsError(err)
	s.Require().True(ok)
	s.Equal(MsgTimeout, apiErr.Message)
	s.Equal([]string{MsgTimeout}, s.notifier.Messages())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RequestsTotal.WithLabelValues("timeout")))
}

func (s *ClientSuite) TestPerCallTimeoutOverride() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}
	client := s.newClient(Config{BaseURL: s.server.URL, Timeout: 20 * time.Millisecond})

	err := client.Do(s.ctx, Request{Method: http.MethodPost, Path: "/orders/delivery-batch", Timeout: 2 * time.Second}, nil)

	s.Require().NoError(err)
	s.Empty(s.notifier.Messages())
}

func (s *ClientSuite) TestServerErrors() {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "server message is surfaced", status: http.StatusBadRequest, body: `{"success":false,"message":"库存不足"}`, message: "库存不足"},
		{name: "missing message falls back", status: http.StatusInternalServerError, body: `{"success":false}`, message: MsgNetwork},
		{name: "non-string message falls back", status: http.StatusBadRequest, body: `{"message":42}`, message: MsgNetwork},
		{name: "non-json body falls back", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, message: MsgNetwork},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false,"message":"未登录或登录已过期"}`, message: "未登录或登录已过期"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.notifier.Reset()
			s.handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}

			err := s.client.Get(s.ctx, "/orders/my", nil, nil)

			apiErr, ok := AsError(err)
			s.Require().True(ok)
			s.Equal(KindNetworkOrServer, apiErr.Kind)
			s.Equal(tt.status, apiErr.Code)
			s.Equal(tt.message, apiErr.Message)
			s.Equal([]string{tt.message}, s.notifier.Messages())
		})
	}
	s.True(IsUnauthorized(&Error{Code: http.StatusUnauthorized}))
}

func (s *ClientSuite) TestInvalidJSONOnSuccess() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}

	var out map[string]any
	err := s.client.Get(s.ctx, "/orders/my", nil, &out)

	apiErr, ok := AsError(err)
	s.Require().True(ok)
	s.Equal(KindNetworkOrServer, apiErr.Kind)
	s.Equal(MsgNetwork, apiErr.Message)
	s.Len(s.notifier.Messages(), 1)
}

func (s *ClientSuite) TestNetworkFailure() {
	s.server.Close()

	err := s.client.Get(s.ctx, "/orders/my", nil, nil)

	apiErr, ok := AsError(err)
	s.Require().True(ok)
	s.Equal(KindNetworkOrServer, apiErr.Kind)
	s.Zero(apiErr.Code)
	s.Equal([]string{MsgNetwork}, s.notifier.Messages())
}

func (s *ClientSuite) TestConstructionFailures() {
	s.Run("token source error is returned unchanged", func() {
		tokenErr := errors.New("storage offline")
		s.tokens.err = tokenErr
		defer func() { s.tokens.err = nil }()

		err := s.client.Get(s.ctx, "/orders/my", nil, nil)

		s.Equal(tokenErr, err)
		_, classified := AsError(err)
		s.False(classified)
	})

	s.Run("unencodable body", func() {
		err := s.client.Post(s.ctx, "/mall/publish", map[string]any{"bad": make(chan int)}, nil)
		s.Require().Error(err)
		_, classified := AsError(err)
		s.False(classified)
	})

	s.Run("relative base url", func() {
		client := s.newClient(Config{BaseURL: "localhost"})
		err := client.Get(s.ctx, "/orders/my", nil, nil)
		s.Require().Error(err)
	})

	s.Empty(s.notifier.Messages())
	s.Zero(s.hits.Load())
}

func (s *ClientSuite) TestDefaults() {
	client := New(Config{BaseURL: "http://example.test"}, nil, nil)
	s.Equal(DefaultTimeout, client.timeout)
	s.Equal(DefaultAPIPrefix, client.apiPrefix)
}
