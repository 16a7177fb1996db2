package sampler

import (
	"context"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/telemetryd/internal/logger"
	"codeberg.org/mutker/telemetryd/internal/manager"
	"codeberg.org/mutker/telemetryd/internal/policy"
	"codeberg.org/mutker/telemetryd/internal/source"
)

// Sampler polls one telemetry source on a fixed interval, classifies each raw
// sample through its policy, and offers the record to the manager. A full
// buffer or a malformed sample costs only that one sample; the loop carries
// on until its context is cancelled or the manager stops.
type Sampler struct {
	name       string
	src        source.Source
	classifier policy.Classifier
	mgr        *manager.Manager
	interval   time.Duration

	dropped     atomic.Uint64
	parseFailed atomic.Uint64
}

// New constructs a sampler. Intervals below one millisecond are raised to the
// default of 500ms.
func New(name string, src source.Source, classifier policy.Classifier, mgr *manager.Manager, interval time.Duration) *Sampler {
	if interval < time.Millisecond {
		interval = 500 * time.Millisecond
	}

	return &Sampler{
		name:       name,
		src:        src,
		classifier: classifier,
		mgr:        mgr,
		interval:   interval,
	}
}

// Run opens the source and samples until the context is cancelled or the
// manager shuts down. The source is closed before Run returns.
func (s *Sampler) Run(ctx context.Context) error {
	if err := s.src.Open(); err != nil {
		return err
	}
	defer func() {
		if err := s.src.Close(); err != nil {
			logger.Warn().Err(err).Str("source", s.name).Msg("Failed to close source")
		}
	}()

	logger.Debug().Str("source", s.name).Dur("interval", s.interval).Msg("Sampler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("source", s.name).Msg("Sampler stopped")
			return nil
		case <-ticker.C:
			if !s.sample() {
				return nil
			}
		}
	}
}

// sample takes one reading. It returns false once the manager no longer
// accepts records, ending the loop.
func (s *Sampler) sample() bool {
	raw, err := s.src.Read()
	if err != nil {
		logger.Debug().Err(err).Str("source", s.name).Msg("Source read failed")
		return true
	}

	rec, err := s.classifier.Format(raw)
	if err != nil {
		s.parseFailed.Add(1)
		logger.Debug().Err(err).Str("source", s.name).Str("raw", raw).Msg("Dropped unparseable sample")
		return true
	}

	if !s.mgr.Log(rec) {
		if !s.mgr.IsRunning() {
			logger.Debug().Str("source", s.name).Msg("Manager stopped, ending sampler")
			return false
		}
		s.dropped.Add(1)
	}

	return true
}

// Dropped returns how many records the full buffer rejected.
func (s *Sampler) Dropped() uint64 {
	return s.dropped.Load()
}

// ParseFailures returns how many raw samples failed to parse.
func (s *Sampler) ParseFailures() uint64 {
	return s.parseFailed.Load()
}
