package sink

import (
	"strings"

	"codeberg.org/mutker/telemetryd/internal/errors"
	"codeberg.org/mutker/telemetryd/internal/logger"
)

// Type names accepted in sink descriptors.
const (
	TypeConsole = "console"
	TypeFile    = "file"
	TypeSQLite  = "sqlite"
)

// Descriptor names a sink to construct. Path applies to the file and sqlite
// types and is ignored for console.
type Descriptor struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// New maps a descriptor to a concrete sink.
func New(desc Descriptor) (Sink, error) {
	switch strings.ToLower(desc.Type) {
	case TypeConsole:
		return NewConsole(), nil
	case TypeFile:
		return NewFile(desc.Path)
	case TypeSQLite:
		return NewSQLite(desc.Path, logger.Default())
	default:
		return nil, errors.WithData(errors.ErrUnknownSink, desc.Type)
	}
}
