// Package logger owns the process root zerolog logger and the context fields
// (request, ingest run, sitting day) every line in a request or run carries
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"hansard/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logger type handed around the codebase
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level        string
	Format       string // json or console
	Service      string
	Component    string
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_COMPONENT, LOG_CALLER and LOG_SAMPLE_EVERY
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:       env.Get("LEVEL", "debug"),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		Component:   env.Get("COMPONENT", ""),
		WithCaller:  env.GetBool("CALLER", false),
		SampleEvery: env.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init builds the root logger. Only the first call has any effect, so binaries call it
// before anything logs and tests call it from TestMain
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

func build(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	zc := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		zc = zc.Str("go_version", bi.GoVersion)
	}
	fields := map[string]string{"service": opt.Service, "component": opt.Component}
	for k, v := range opt.StaticFields {
		fields[k] = v
	}
	for k, v := range fields {
		if v != "" {
			zc = zc.Str(k, v)
		}
	}
	if opt.WithCaller {
		zc = zc.Caller()
	}

	l := zc.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// parseLevel is zerolog's parser plus the "warning" alias; unknown levels mean debug
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

// Get returns the root logger, building it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Named returns a child tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey string

// ctxFields lists the context keys C copies onto log lines, keyed by log field
var ctxFields = []ctxKey{"request_id", "run_id", "sitting_date"}

const (
	keyRequestID = ctxKey("request_id")
	keyRunID     = ctxKey("run_id")
	keySitting   = ctxKey("sitting_date")
)

func with(ctx context.Context, k ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

// WithRequest tags ctx with an http request id
func WithRequest(ctx context.Context, id string) context.Context { return with(ctx, keyRequestID, id) }

// WithRun tags ctx with an ingest run id
func WithRun(ctx context.Context, id string) context.Context { return with(ctx, keyRunID, id) }

// WithSitting tags ctx with the sitting day being processed
func WithSitting(ctx context.Context, day string) context.Context { return with(ctx, keySitting, day) }

// RunID is the ingest run id on ctx, or ""
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(keyRunID).(string)
	return s
}

// C is the root logger with whatever request, run and sitting fields ctx carries
func C(ctx context.Context) *Logger {
	zc := Get().With()
	for _, k := range ctxFields {
		if s, ok := ctx.Value(k).(string); ok && s != "" {
			zc = zc.Str(string(k), s)
		}
	}
	l := zc.Logger()
	return &l
}
