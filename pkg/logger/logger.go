// Package logger provides opinionated logging capabilities for VisorX
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option customizes a logger built by NewLogger.
type Option func(*options)

type options struct {
	out   io.Writer
	color bool
}

// WithOutput sends log lines to w instead of stdout. Colored levels are
// disabled since w is usually a file.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
		o.color = false
	}
}

func NewLogger(debug bool, opts ...Option) *zap.Logger {
	o := &options{out: os.Stdout, color: true}
	for _, opt := range opts {
		opt(o)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if o.color {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Set log level
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(o.out),
		level,
	)

	return zap.New(core, zap.AddCaller())
}
