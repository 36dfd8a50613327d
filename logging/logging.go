// Package logging wires named zap loggers behind one process-wide level.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapgrpc"
)

var (
	mu    sync.Mutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	root  = newRoot(os.Stderr)
)

func newRoot(w io.Writer) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.NameKey = "name"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// MustGetLogger returns a sugared logger named name. Loggers created before
// SetOutput keep writing to the previous sink.
func MustGetLogger(name string) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return root.Named(name).Sugar()
}

// SetLevel parses spec ("debug", "info", "warn", ...) and applies it to
// every logger.
func SetLevel(spec string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(spec)); err != nil {
		return errors.Wrapf(err, "invalid log level %q", spec)
	}
	level.SetLevel(l)
	return nil
}

func Level() zapcore.Level { return level.Level() }

// SetOutput redirects loggers created afterwards to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = newRoot(w)
}

// GRPCLogger adapts a named logger for grpclog.SetLoggerV2.
func GRPCLogger(name string) *zapgrpc.Logger {
	mu.Lock()
	l := root.Named(name)
	mu.Unlock()
	return zapgrpc.NewLogger(l.WithOptions(zap.AddCallerSkip(4)))
}
