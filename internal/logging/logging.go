// Package logging carries a zerolog logger through context.Context and renders
// its events for a terminal.
package logging

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type logKey struct{}

var nop = zerolog.Nop()

// WithLogger attaches the given logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

// From returns the logger stored in ctx, or a disabled logger if there is none.
func From(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(logKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return &nop
}

// New builds a console logger writing to out.
func New(out io.Writer, verbose, color bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(NewConsoleWriter(out, color, verbose)).Level(level)
}

var traceErrors atomic.Bool

func init() {
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		return eris.ToString(err, traceErrors.Load())
	}
}

// TraceErrors controls whether logged errors carry their eris stack trace.
// It applies to every logger.
func TraceErrors(on bool) {
	traceErrors.Store(on)
}
