package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig ErrorCode = "invalid_configuration"
	ErrMissingConfig ErrorCode = "missing_configuration"
	ErrBindFlags     ErrorCode = "bind_flags_failed"
	ErrReadConfig    ErrorCode = "read_config_failed"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Queue errors
	ErrQueueStopped ErrorCode = "queue_stopped"
	ErrQueueFull    ErrorCode = "queue_full"

	// Worker pool errors
	ErrPoolStopped ErrorCode = "pool_stopped"

	// Classifier errors
	ErrParseSample      ErrorCode = "parse_sample_failed"
	ErrInvalidThreshold ErrorCode = "invalid_threshold"

	// Sink errors
	ErrSinkWrite   ErrorCode = "sink_write_failed"
	ErrSinkInit    ErrorCode = "sink_init_failed"
	ErrSinkClose   ErrorCode = "sink_close_failed"
	ErrUnknownSink ErrorCode = "unknown_sink_type"

	// Source errors
	ErrSourceOpen    ErrorCode = "source_open_failed"
	ErrSourceRead    ErrorCode = "source_read_failed"
	ErrUnknownSource ErrorCode = "unknown_source_type"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrUnavailable:      "Service unavailable",
	ErrAlreadyRunning:   "Another instance is already running",
	ErrInvalidConfig:    "Invalid configuration",
	ErrMissingConfig:    "Missing configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrQueueStopped:     "Queue is stopped",
	ErrQueueFull:        "Queue is full",
	ErrPoolStopped:      "Worker pool is stopped",
	ErrParseSample:      "Failed to parse telemetry sample",
	ErrInvalidThreshold: "Invalid policy thresholds",
	ErrSinkWrite:        "Failed to write record to sink",
	ErrSinkInit:         "Failed to initialize sink",
	ErrSinkClose:        "Failed to close sink",
	ErrUnknownSink:      "Unknown sink type",
	ErrSourceOpen:       "Failed to open telemetry source",
	ErrSourceRead:       "Failed to read telemetry source",
	ErrUnknownSource:    "Unknown source type",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
	ErrInvalidOperation: "Invalid operation",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
