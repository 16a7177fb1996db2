package sink

import "codeberg.org/mutker/telemetryd/internal/record"

// Sink consumes records. Implementations must be internally thread-safe:
// in pool mode the same sink receives concurrent Write calls. Write errors
// are swallowed by the dispatch layer and must not affect other sinks.
type Sink interface {
	Write(rec record.Record) error
	Close() error
}
