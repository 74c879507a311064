// Package logger holds the console's process logger.
//
// main calls Init once; everything else receives a zerolog.Logger derived
// with Component, or reaches the root through Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	Level   string    // trace, debug, info, warn or error; info otherwise
	Pretty  bool      // console writer instead of JSON, for development
	Output  io.Writer // os.Stdout when nil
	Service string    // "service" field on every entry
}

// Component field name shared by every derived logger.
const componentField = "component"

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init builds the process logger. Later calls return the first one.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		ctx := zerolog.New(out).
			Level(lvl).
			With().
			Timestamp().
			Caller()
		if opts.Service != "" {
			ctx = ctx.Str("service", opts.Service)
		}
		instance = ctx.Logger()

		initialized = true
	})
	return instance
}

// Get returns the process logger. It panics before Init.
func Get() *zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return &instance
}

// Component derives a logger tagged with the component name from parent.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str(componentField, name).Logger()
}

// Reset forgets the process logger. Tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
