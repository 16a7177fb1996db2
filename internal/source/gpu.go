package source

import (
	"codeberg.org/mutker/telemetryd/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// GPUSource reads GPU utilization through NVML. NVML keeps process-global
// state, so the source owns the init/shutdown pairing.
type GPUSource struct {
	device      nvml.Device
	initialized bool
}

// NewGPU constructs a source over the first NVML device.
func NewGPU() *GPUSource {
	return &GPUSource{}
}

func (s *GPUSource) Open() error {
	if s.initialized {
		return nil
	}

	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return errors.WithData(errors.ErrSourceOpen, nvml.ErrorString(ret))
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return errors.WithData(errors.ErrSourceOpen, nvml.ErrorString(ret))
	}

	s.device = device
	s.initialized = true

	return nil
}

func (s *GPUSource) Read() (string, error) {
	if !s.initialized {
		return "", errors.New(errors.ErrSourceRead)
	}

	utilization, ret := s.device.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return "", errors.WithData(errors.ErrSourceRead, nvml.ErrorString(ret))
	}

	return formatPercent(float64(utilization.Gpu)), nil
}

func (s *GPUSource) Close() error {
	if !s.initialized {
		return nil
	}
	s.initialized = false

	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		return errors.WithData(errors.ErrShutdownFailed, nvml.ErrorString(ret))
	}

	return nil
}
