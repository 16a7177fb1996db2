package source

import (
	"strings"

	"codeberg.org/mutker/telemetryd/internal/errors"
)

// Type names accepted in source descriptors.
const (
	TypeCPU  = "cpu"
	TypeRAM  = "ram"
	TypeGPU  = "gpu"
	TypeFile = "file"
)

// Descriptor names a source to construct. Path applies to the file type and
// optionally overrides the procfs location for cpu and ram.
type Descriptor struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// New maps a descriptor to a concrete source.
func New(desc Descriptor) (Source, error) {
	switch strings.ToLower(desc.Type) {
	case TypeCPU:
		if desc.Path != "" {
			return NewCPUFromPath(desc.Path), nil
		}
		return NewCPU(), nil
	case TypeRAM:
		if desc.Path != "" {
			return NewRAMFromPath(desc.Path), nil
		}
		return NewRAM(), nil
	case TypeGPU:
		return NewGPU(), nil
	case TypeFile:
		if desc.Path == "" {
			return nil, errors.WithMessage(errors.ErrInvalidConfig, "file source requires a path")
		}
		return NewFile(desc.Path), nil
	default:
		return nil, errors.WithData(errors.ErrUnknownSource, desc.Type)
	}
}
