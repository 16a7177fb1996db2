package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"codeberg.org/mutker/telemetryd/internal/config"
	"codeberg.org/mutker/telemetryd/internal/logger"
	"codeberg.org/mutker/telemetryd/internal/manager"
	"codeberg.org/mutker/telemetryd/internal/pid"
	"codeberg.org/mutker/telemetryd/internal/policy"
	"codeberg.org/mutker/telemetryd/internal/record"
	"codeberg.org/mutker/telemetryd/internal/sampler"
	"codeberg.org/mutker/telemetryd/internal/sink"
	"codeberg.org/mutker/telemetryd/internal/source"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	sinks, err := buildSinks()
	if err != nil {
		return err
	}
	defer closeSinks(sinks)

	builder := manager.NewBuilder().
		SetAppName(cfg.AppName).
		SetBufferSize(cfg.BufferSize)
	if cfg.UsePool {
		builder.UsePool(cfg.PoolSize)
	}
	for _, s := range sinks {
		builder.AddSink(s)
	}

	mgr, err := builder.Build()
	if err != nil {
		return err
	}

	mgr.Start()
	defer mgr.Stop()

	var wg sync.WaitGroup
	started := 0
	for name, srcCfg := range cfg.Sources {
		if !srcCfg.Enabled {
			logger.Debug().Str("source", name).Msg("Source disabled, skipping")
			continue
		}

		src, err := source.New(source.Descriptor{Type: srcCfg.Type, Path: srcCfg.Path})
		if err != nil {
			return err
		}

		classifier := policy.NewClassifier(cfg.AppName, policyFor(name, srcCfg.Type))
		interval := time.Duration(srcCfg.SampleRateMs) * time.Millisecond
		smp := sampler.New(name, src, classifier, mgr, interval)

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			if err := smp.Run(ctx); err != nil {
				logger.Error().Err(err).Str("source", name).Msg("Sampler failed")
			}
		}(name)
		started++
	}

	if started == 0 {
		logger.Warn().Msg("No sources enabled")
	}
	logger.Info().Int("sources", started).Msg("telemetryd running")

	<-ctx.Done()
	wg.Wait()

	return nil
}

func buildSinks() ([]sink.Sink, error) {
	sinks := make([]sink.Sink, 0, len(cfg.Sinks))
	for _, desc := range cfg.Sinks {
		s, err := sink.New(desc)
		if err != nil {
			closeSinks(sinks)
			return nil, err
		}
		logger.Debug().Str("type", desc.Type).Str("path", desc.Path).Msg("Created sink")
		sinks = append(sinks, s)
	}

	return sinks, nil
}

func closeSinks(sinks []sink.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close sink")
		}
	}
}

// policyFor picks the severity policy from the source type, falling back to
// the config key for generic file sources named after a context.
func policyFor(name, srcType string) policy.Policy {
	switch strings.ToLower(srcType) {
	case source.TypeCPU:
		return policy.CPU
	case source.TypeRAM:
		return policy.RAM
	case source.TypeGPU:
		return policy.GPU
	}

	switch strings.ToUpper(name) {
	case record.GPU.String():
		return policy.GPU
	case record.RAM.String():
		return policy.RAM
	default:
		return policy.CPU
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
