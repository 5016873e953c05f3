package logs

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const hertzTag = "[hertz] "

// hertzLogger routes hertz's internal logging into the scheduler log with a
// [hertz] tag. Info and notice lines are demoted to debug; the status server
// is chatty on startup and its access noise is not interesting at info.
type hertzLogger struct {
	l Logger
}

var _ hlog.FullLogger = (*hertzLogger)(nil)

// NewHlogLogger returns a hertz FullLogger backed by l.
func NewHlogLogger(l Logger) hlog.FullLogger {
	return &hertzLogger{l: l}
}

func (h *hertzLogger) emit(ctx context.Context, level hlog.Level, msg string) {
	msg = hertzTag + msg
	switch level {
	case hlog.LevelTrace, hlog.LevelDebug, hlog.LevelInfo, hlog.LevelNotice:
		h.l.CtxDebug(ctx, "%s", msg)
	case hlog.LevelWarn:
		h.l.CtxWarn(ctx, "%s", msg)
	default:
		// fatal from hertz is logged as error; the process decides whether to exit
		h.l.CtxError(ctx, "%s", msg)
	}
}

func (h *hertzLogger) Trace(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelTrace, fmt.Sprint(v...))
}
func (h *hertzLogger) Debug(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelDebug, fmt.Sprint(v...))
}
func (h *hertzLogger) Info(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelInfo, fmt.Sprint(v...))
}
func (h *hertzLogger) Notice(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelNotice, fmt.Sprint(v...))
}
func (h *hertzLogger) Warn(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelWarn, fmt.Sprint(v...))
}
func (h *hertzLogger) Error(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelError, fmt.Sprint(v...))
}
func (h *hertzLogger) Fatal(v ...interface{}) {
	h.emit(context.Background(), hlog.LevelFatal, fmt.Sprint(v...))
}

func (h *hertzLogger) Tracef(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelTrace, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) Debugf(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelDebug, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) Infof(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelInfo, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) Noticef(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelNotice, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) Warnf(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelWarn, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) Errorf(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelError, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) Fatalf(format string, v ...interface{}) {
	h.emit(context.Background(), hlog.LevelFatal, fmt.Sprintf(format, v...))
}

func (h *hertzLogger) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelTrace, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelDebug, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelInfo, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelNotice, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelWarn, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelError, fmt.Sprintf(format, v...))
}
func (h *hertzLogger) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.emit(ctx, hlog.LevelFatal, fmt.Sprintf(format, v...))
}

// SetLevel is ignored; the scheduler log level is owned by logs.Init.
func (h *hertzLogger) SetLevel(hlog.Level) {}

// SetOutput is ignored for the same reason.
func (h *hertzLogger) SetOutput(io.Writer) {}
