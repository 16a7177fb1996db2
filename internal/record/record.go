package record

import (
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Context is the telemetry source dimension a record describes.
type Context uint8

const (
	CPU Context = iota
	GPU
	RAM
)

func (c Context) String() string {
	switch c {
	case CPU:
		return "CPU"
	case GPU:
		return "GPU"
	case RAM:
		return "RAM"
	default:
		return "UNKNOWN"
	}
}

// Severity orders log records from informational to critical.
type Severity uint8

const (
	Info Severity = iota
	Warn
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Record is an immutable log entry: produced once by a sampler, read many
// times by sinks. The canonical text is derived at construction and never
// changes afterwards.
type Record struct {
	appName   string
	timestamp time.Time
	context   Context
	severity  Severity
	payload   int
	text      string
}

// New builds a record classifying the payload with the default buckets:
// at most 25 is INFO, 26 through 74 is WARN, 75 and above is CRITICAL.
func New(appName string, ctx Context, payload int) Record {
	payload = clampPayload(payload)

	var severity Severity
	switch {
	case payload <= 25:
		severity = Info
	case payload < 75:
		severity = Warn
	default:
		severity = Critical
	}

	return build(appName, ctx, severity, payload)
}

// NewWithSeverity builds a record with an explicit severity, bypassing the
// default classifier. Policy-driven classification uses this path.
func NewWithSeverity(appName string, ctx Context, severity Severity, payload int) Record {
	return build(appName, ctx, severity, clampPayload(payload))
}

func build(appName string, ctx Context, severity Severity, payload int) Record {
	now := time.Now()

	return Record{
		appName:   appName,
		timestamp: now,
		context:   ctx,
		severity:  severity,
		payload:   payload,
		text: fmt.Sprintf("[%s] [%s] [%s] [%s] Payload value is: %d%%",
			now.Format(timestampLayout), ctx, appName, severity, payload),
	}
}

// clampPayload pins the semantic payload range to whole percent.
func clampPayload(payload int) int {
	if payload < 0 {
		return 0
	}
	if payload > 100 {
		return 100
	}

	return payload
}

func (r Record) AppName() string {
	return r.appName
}

func (r Record) Timestamp() time.Time {
	return r.timestamp
}

func (r Record) Context() Context {
	return r.context
}

func (r Record) Severity() Severity {
	return r.severity
}

func (r Record) Payload() int {
	return r.payload
}

func (r Record) Text() string {
	return r.text
}

func (r Record) String() string {
	return r.text
}
