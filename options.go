package xlbridge

import (
	"io"
	"io/fs"
	"log/slog"
	"runtime"
)

// Options holds configuration shared by the parse, fill and save entry points.
type Options struct {
	logger          *slog.Logger
	tagDelim        string
	tagSep          string
	selectExpr      string
	saveConcurrency int
	fileMode        fs.FileMode
}

func defaultOptions() *Options {
	return &Options{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		tagDelim:        "#",
		tagSep:          "&",
		saveConcurrency: runtime.GOMAXPROCS(0),
		fileMode:        0o644,
	}
}

func buildOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures parsing, filling and saving.
type Option func(*Options)

// WithLogger sets the structured logger (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTagDelimiters sets the header tag delimiters (default: "#" before the
// first tag, "&" between tags).
func WithTagDelimiters(delim, sep string) Option {
	return func(o *Options) {
		o.tagDelim = delim
		o.tagSep = sep
	}
}

// WithSelect sets a boolean expression; only records for which it holds are
// filled back. Record fields are available as variables.
func WithSelect(expression string) Option {
	return func(o *Options) { o.selectExpr = expression }
}

// WithSaveConcurrency bounds the number of records saved in parallel
// (default: GOMAXPROCS).
func WithSaveConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.saveConcurrency = n
		}
	}
}

// WithFileMode sets the permission bits of record files (default: 0644).
func WithFileMode(mode fs.FileMode) Option {
	return func(o *Options) { o.fileMode = mode }
}
