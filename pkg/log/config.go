package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level       string `mapstructure:"level"`
	Pretty      bool   `mapstructure:"pretty"`
	ServiceName string `mapstructure:"service_name"`
}

// Option tunes a logger built by New or Init.
type Option func(*options)

type options struct {
	out io.Writer
}

// WithWriter sends log lines to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

var (
	installed atomic.Pointer[zerolog.Logger]
	initOnce  sync.Once

	// fallback serves L until Init has run.
	fallback = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// ParseLevel maps a level name onto a zerolog level. Blank or unknown
// names yield info, "warning" is an alias of warn and "off" of disabled.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c Config) sink(out io.Writer) io.Writer {
	if !c.Pretty {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
}

// New builds a timestamped logger at cfg.Level, tagged with the service
// name when one is set.
func New(cfg Config, opts ...Option) zerolog.Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	lc := zerolog.New(cfg.sink(o.out)).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.ServiceName != "" {
		lc = lc.Str(FieldService, cfg.ServiceName)
	}
	return lc.Logger()
}

// Init installs the process logger on its first call and routes the
// stdlib log package through it, which is where librdkafka and grpc
// warnings end up. Later calls do nothing.
func Init(cfg Config, opts ...Option) {
	initOnce.Do(func() {
		logger := New(cfg, opts...)
		installed.Store(&logger)

		stdlog.SetFlags(0)
		stdlog.SetOutput(logger.With().Str("source", "stdlog").Logger())
	})
}

// L returns the process logger.
func L() zerolog.Logger {
	if l := installed.Load(); l != nil {
		return *l
	}
	return fallback
}
