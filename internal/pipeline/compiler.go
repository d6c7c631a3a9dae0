package pipeline

import (
	"fmt"
	"time"

	"relay/internal/config"
	"relay/internal/spec"
	"relay/internal/transform"
	"relay/sink"
	skafka "relay/sink/kafka"
	"relay/sink/stdout"
	"relay/source/kafka"
)

// Compile wires a Runner from a parsed pipeline file. confPath is the
// resolved path of the Kafka source config referenced by the file.
func Compile(cfg spec.File, confPath string) (*Runner, error) {
	r := NewRunner()

	if cfg.Source.Kind != "kafka" {
		return nil, fmt.Errorf("unsupported source %q", cfg.Source.Kind)
	}
	kc, err := config.LoadKafkaConfig(confPath)
	if err != nil {
		return nil, err
	}
	src, err := kafka.NewAdapter(cfg.Source.Driver)
	if err != nil {
		return nil, err
	}
	if err = src.Configure(kc); err != nil {
		return nil, err
	}
	r.SetSource(src)

	fn, err := transform.New(cfg.Pipeline.Transform)
	if err != nil {
		return nil, err
	}
	r.SetTransform(fn)

	sDrv, err := sink.NewAdapter(cfg.Sink.Driver)
	if err != nil {
		return nil, err
	}
	switch cfg.Sink.Driver {
	case "kafka":
		err = sDrv.Configure(skafka.Config{
			Brokers: cfg.Sink.Kafka.Brokers,
			Topic:   cfg.Sink.Kafka.Topic,
			Acks:    cfg.Sink.Kafka.Acks,
			Version: cfg.Sink.Kafka.Version,
		})
	case "stdout":
		err = sDrv.Configure(stdout.Config{
			PrintValue:    cfg.Sink.Stdout.PrintValue,
			ValueMaxBytes: cfg.Sink.Stdout.ValueMaxBytes,
		})
	default:
		err = fmt.Errorf("no config block for sink %q", cfg.Sink.Driver)
	}
	if err != nil {
		return nil, err
	}
	r.SetSink(sDrv)

	r.SetConfig(loopConfig(cfg.Pipeline))
	return r, nil
}

func loopConfig(p spec.PipelineSpec) Config {
	return Config{
		BatchSize:      p.BatchSize,
		PollWait:       time.Duration(p.PollWaitMS) * time.Millisecond,
		IdleWait:       time.Duration(p.IdleWaitMS) * time.Millisecond,
		PublishTimeout: time.Duration(p.PublishTimeoutMS) * time.Millisecond,
		MaxAttempts:    p.RetryPolicy.Attempts,
		Backoff: BackoffConfig{
			Base:       time.Duration(p.RetryPolicy.BackoffMS) * time.Millisecond,
			Multiplier: p.RetryPolicy.Multiplier,
			Cap:        time.Duration(p.RetryPolicy.CapMS) * time.Millisecond,
		},
		ErrorPolicy: Policy(p.ErrorPolicy),
	}
}
