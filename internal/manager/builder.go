package manager

import (
	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/queue"
	"codeberg.org/mutker/telemetryd/internal/record"
	"codeberg.org/mutker/telemetryd/internal/sink"
)

const (
	defaultBufferSize = 128
	defaultPoolSize   = 4
)

// Builder assembles a Manager. Build validates the whole configuration at
// once so a Manager is either fully initialized or not constructed at all.
type Builder struct {
	appName    string
	sinks      []sink.Sink
	bufferSize int
	usePool    bool
	poolSize   int
}

// NewBuilder returns a builder with the defaults: a 128-slot buffer, direct
// dispatch, no sinks.
func NewBuilder() *Builder {
	return &Builder{
		bufferSize: defaultBufferSize,
		poolSize:   defaultPoolSize,
	}
}

// SetAppName sets the identity stamped into diagnostics.
func (b *Builder) SetAppName(name string) *Builder {
	b.appName = name
	return b
}

// SetBufferSize sets the record queue capacity.
func (b *Builder) SetBufferSize(size int) *Builder {
	b.bufferSize = size
	return b
}

// UsePool switches dispatch to pool mode with the given worker count.
func (b *Builder) UsePool(size int) *Builder {
	b.usePool = true
	b.poolSize = size
	return b
}

// AddSink registers an already-constructed sink.
func (b *Builder) AddSink(s sink.Sink) *Builder {
	b.sinks = append(b.sinks, s)
	return b
}

// Build validates the configuration and returns a ready-to-start Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.appName == "" {
		return nil, errors.WithMessage(errors.ErrInvalidConfig, "app name must not be empty")
	}
	if b.bufferSize < 1 {
		return nil, errors.WithMessage(errors.ErrInvalidConfig, "buffer size must be at least 1")
	}
	if b.usePool && b.poolSize < 1 {
		return nil, errors.WithMessage(errors.ErrInvalidConfig, "pool size must be at least 1")
	}

	return &Manager{
		appName:  b.appName,
		sinks:    b.sinks,
		queue:    queue.New[record.Record](b.bufferSize),
		usePool:  b.usePool,
		poolSize: b.poolSize,
	}, nil
}
