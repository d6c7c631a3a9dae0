package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"relay/internal/engine"
	"relay/internal/logging"
	"relay/source/kafka"
)

func main() {
	path := flag.String("config", "relay.yml", "pipeline configuration file")
	flag.Parse()

	logging.InitFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	kafka.Register("sarama", func() kafka.Adapter { return &kafka.SaramaDriver{} })

	e, err := engine.Bootstrap(ctx, engine.Config{PipelineYml: *path})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := e.Run(ctx); err != nil {
		log.Fatalf("engine: %v", err)
	}
}
