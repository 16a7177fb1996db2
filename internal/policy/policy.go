package policy

import (
	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/record"
)

// Policy carries the static severity thresholds for one telemetry source.
// Thresholds are fixed at build time and never loaded from configuration;
// their validity is asserted by init and by tests.
type Policy struct {
	Context  record.Context
	Unit     string
	Warning  float64
	Critical float64
}

// The per-source policies.
var (
	CPU = Policy{Context: record.CPU, Unit: "%", Warning: 75, Critical: 90}
	GPU = Policy{Context: record.GPU, Unit: "%", Warning: 80, Critical: 95}
	RAM = Policy{Context: record.RAM, Unit: "%", Warning: 70, Critical: 85}
)

func init() {
	for _, p := range []Policy{CPU, GPU, RAM} {
		if err := p.Validate(); err != nil {
			panic(err)
		}
	}
}

// ForContext returns the policy for a telemetry source.
func ForContext(ctx record.Context) Policy {
	switch ctx {
	case record.GPU:
		return GPU
	case record.RAM:
		return RAM
	default:
		return CPU
	}
}

// InferSeverity classifies a value with strict comparisons: a value exactly
// at a threshold stays in the lower bucket.
func (p Policy) InferSeverity(value float64) record.Severity {
	switch {
	case value > p.Critical:
		return record.Critical
	case value > p.Warning:
		return record.Warn
	default:
		return record.Info
	}
}

// Validate checks the threshold ordering: 0 < warning < critical <= 100.
func (p Policy) Validate() error {
	if p.Warning <= 0 || p.Warning >= p.Critical || p.Critical > 100 {
		return errors.WithData(errors.ErrInvalidThreshold, struct {
			Context  string
			Warning  float64
			Critical float64
		}{
			Context:  p.Context.String(),
			Warning:  p.Warning,
			Critical: p.Critical,
		})
	}

	return nil
}
