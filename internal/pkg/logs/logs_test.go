package logs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	level string
	msg   string
}

type recordingLogger struct {
	defaultLogger
	entries []entry
}

func (r *recordingLogger) record(level, format string, v ...interface{}) {
	r.entries = append(r.entries, entry{level: level, msg: fmt.Sprintf(format, v...)})
}

func (r *recordingLogger) Debug(format string, v ...interface{}) { r.record("debug", format, v...) }
func (r *recordingLogger) Info(format string, v ...interface{})  { r.record("info", format, v...) }
func (r *recordingLogger) Warn(format string, v ...interface{})  { r.record("warn", format, v...) }
func (r *recordingLogger) Error(format string, v ...interface{}) { r.record("error", format, v...) }
func (r *recordingLogger) CtxDebug(_ context.Context, format string, v ...interface{}) {
	r.record("debug", format, v...)
}
func (r *recordingLogger) CtxInfo(_ context.Context, format string, v ...interface{}) {
	r.record("info", format, v...)
}
func (r *recordingLogger) CtxWarn(_ context.Context, format string, v ...interface{}) {
	r.record("warn", format, v...)
}
func (r *recordingLogger) CtxError(_ context.Context, format string, v ...interface{}) {
	r.record("error", format, v...)
}

var _ Logger = (*recordingLogger)(nil)

func TestHlogLogger_Levels(t *testing.T) {
	rec := &recordingLogger{}
	h := NewHlogLogger(rec)

	h.Infof("listening on %s", ":8089")
	h.Warn("slow handler")
	h.CtxErrorf(context.Background(), "write: %v", "broken pipe")
	h.Fatal("cannot bind")

	assert.Equal(t, []entry{
		{"debug", "[hertz] listening on :8089"},
		{"warn", "[hertz] slow handler"},
		{"error", "[hertz] write: broken pipe"},
		{"error", "[hertz] cannot bind"},
	}, rec.entries)
}

func TestInit_FileOutput(t *testing.T) {
	prev := DefaultLogger()
	t.Cleanup(func() { SetLogger(prev) })

	path := filepath.Join(t.TempDir(), "logs", "thursday.log")
	require.NoError(t, Init(Options{Level: "info", Format: "text", Output: "file", File: path}))

	ctx := SetLogID(context.Background(), "abc12345")
	CtxInfo(ctx, "[poller] firing %s", "2026-01-15_10:00@morning")
	Debug("hidden at info level")
	Flush()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "abc12345 [poller] firing 2026-01-15_10:00@morning")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "abc12345", GetLogID(ctx))
}

func TestInit_RejectsFileOutputWithoutPath(t *testing.T) {
	assert.Error(t, Init(Options{Output: "file"}))
	assert.Error(t, Init(Options{Output: "syslog"}))
}
