package segment

import (
	"io"
	"log/slog"
)

// DefaultBufferSize is the size of the buffered sink in front of the file.
const DefaultBufferSize = 4096

type options struct {
	bufferSize int
	sync       bool
	logger     *slog.Logger
	metrics    *Metrics
}

func defaultOptions() options {
	return options{
		bufferSize: DefaultBufferSize,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Writer.
type Option func(*options)

// WithBufferSize sets the sink buffer size. Values <= 0 keep the default.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithSync makes the writer fsync the file after every flushed row.
func WithSync(sync bool) Option {
	return func(o *options) {
		o.sync = sync
	}
}

// WithLogger sets the logger. A nil logger keeps logging disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics the writer updates.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
