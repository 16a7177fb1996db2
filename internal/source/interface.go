package source

// Source yields raw telemetry sample strings. Sources are polled by sampler
// goroutines outside the logging core; every sample they produce goes through
// a policy classifier before it reaches the manager.
type Source interface {
	// Open prepares the source for reading.
	Open() error

	// Read returns the next raw sample, a decimal utilization percentage.
	Read() (string, error)

	// Close releases the source's backing resources.
	Close() error
}
