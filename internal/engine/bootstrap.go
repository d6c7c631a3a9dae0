package engine

import (
	"context"
	"fmt"

	"relay/internal/config"
	"relay/internal/logging"
	"relay/internal/pipeline"
	"relay/internal/telemetry"
	"relay/internal/transport"
)

type Config struct {
	PipelineYml string
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	// 1. pipeline file: everything else is configured from it
	file, confPath, err := config.LoadPipelineSpec(cfg.PipelineYml)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logging.Configure(logging.Options{Level: file.Log.Level, JSON: file.Log.JSON})

	// 2. pipeline runner
	runner, err := pipeline.Compile(file, confPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	// 3. ops surface
	srv, err := transport.StartServer(file.Ops.HealthPort)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	telemetry.Expose(file.Ops.MetricsPort)

	if err := runner.Start(ctx); err != nil {
		return nil, err
	}
	srv.SetServing(true)

	return &Engine{
		transport: srv,
		runner:    runner,
	}, nil
}
