// Package logger builds the plain-text zap logger used for request lines.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger that prints bare messages, one per line, to w.
// Fields, if any, follow the message as JSON.
func New(w io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(zapcore.AddSync(w)), zap.InfoLevel)
	return zap.New(core)
}

// Stdout is the logger the binary uses.
func Stdout() *zap.Logger {
	return New(os.Stdout)
}

// syncErrOut receives sync failures; the logger itself may be the broken part.
var syncErrOut io.Writer = os.Stderr

// Sync flushes l. Terminals and pipes reject fsync, so those errors are ignored.
func Sync(l *zap.Logger) {
	if err := l.Sync(); err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
		_, _ = fmt.Fprintf(syncErrOut, "cannot sync logger: %v\n", err)
	}
}
