package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestLogrusLogger(t *testing.T) (*LogrusLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.DebugLevel)
	return NewLogrusLogger(l), &buf
}

func TestLogrusLogger_Levels(t *testing.T) {
	log, buf := newTestLogrusLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=debug", "msg=dbg", "a=1",
		"level=info", "msg=inf", "b=2",
		"level=warning", "msg=wrn", "c=3",
		"level=error", "msg=err", "d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestLogrusLogger_With(t *testing.T) {
	log, buf := newTestLogrusLogger(t)

	child := log.With("module", "scan_worker")
	child.Info(context.Background(), "claimed", "scan_id", "s-1")

	out := buf.String()
	assert.Contains(t, out, "module=scan_worker")
	assert.Contains(t, out, "scan_id=s-1")
}

func TestToFields_OddArgs(t *testing.T) {
	f := toFields([]any{"k", "v", 7, "seven", "dangling"})
	assert.Equal(t, "v", f["k"])
	assert.Equal(t, "seven", f["7"])
	assert.Equal(t, "dangling", f["!BADKEY"])
}

func TestNew_SelectsBackend(t *testing.T) {
	var buf bytes.Buffer

	l := New(FormatText, "debug", &buf)
	_, ok := l.(*LogrusLogger)
	assert.True(t, ok, "text format must use logrus")

	l = New(FormatJSON, "info", &buf)
	_, ok = l.(*SlogLogger)
	assert.True(t, ok, "json format must use slog")

	buf.Reset()
	l.Info(context.Background(), "hello", "k", "v")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "expected JSON output, got %q", buf.String())
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(FormatJSON, "chatty", &buf).(*SlogLogger)

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
