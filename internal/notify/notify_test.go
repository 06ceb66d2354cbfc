package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewTerminal(&buf).Error(context.Background(), "网络错误")
	assert.Contains(t, buf.String(), "网络错误")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	NewLog(logger).Error(context.Background(), "请求超时，请稍后重试")
	assert.Contains(t, buf.String(), `"message":"请求超时，请稍后重试"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Error(context.Background(), "a")
	r.Error(context.Background(), "b")

	got := r.Messages()
	assert.Equal(t, []string{"a", "b"}, got)
	got[0] = "mutated"
	assert.Equal(t, "a", r.Messages()[0])

	r.Reset()
	assert.Empty(t, r.Messages())
}
