// Package notify is the console's single transient message surface. Every
// user-visible request failure goes through a Notifier exactly once.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Notifier shows a transient error message to the user.
type Notifier interface {
	Error(ctx context.Context, message string)
}

var errorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("9")).
	PaddingLeft(1).
	PaddingRight(1)

// Terminal prints messages as a styled line on w (usually stderr).
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Error(_ context.Context, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, errorStyle.Render("✖ "+message))
}

// Log records messages through slog, for headless runs.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Error(ctx context.Context, message string) {
	l.logger.WarnContext(ctx, "user notification", "message", message)
}

// Recorder keeps every message in order. Used by tests to assert that a
// failure was reported exactly once.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Error(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset drops recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
