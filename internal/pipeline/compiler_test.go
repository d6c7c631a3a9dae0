package pipeline

import (
	"context"
	"testing"
	"time"

	"relay/internal/spec"
	"relay/source/kafka"
)

type nopAdapter struct {
	cfg kafka.Config
}

func (a *nopAdapter) Configure(c kafka.Config) error           { a.cfg = c; return nil }
func (a *nopAdapter) Run(context.Context, kafka.RunFunc) error { return nil }
func (a *nopAdapter) Close() error                             { return nil }

func testSpec() spec.File {
	var f spec.File
	f.SchemaVersion = "v1"
	f.Source.Kind = "kafka"
	f.Source.Driver = "nop"
	f.Pipeline.Transform = "double"
	f.Pipeline.BatchSize = 42
	f.Pipeline.PollWaitMS = 300
	f.Pipeline.PublishTimeoutMS = 2000
	f.Pipeline.ErrorPolicy = "skip"
	f.Pipeline.RetryPolicy.Attempts = 3
	f.Pipeline.RetryPolicy.BackoffMS = 50
	f.Pipeline.RetryPolicy.Multiplier = 1.5
	f.Pipeline.RetryPolicy.CapMS = 800
	f.Sink.Driver = "stdout"
	return f
}

func TestCompile_WiresRunnerFromSpec(t *testing.T) {
	kafka.Register("nop", func() kafka.Adapter { return &nopAdapter{} })

	r, err := Compile(testSpec(), "")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if r.source == nil || r.sink == nil || r.fn == nil {
		t.Fatal("runner missing a collaborator")
	}
	if r.cfg.BatchSize != 42 {
		t.Fatalf("batch size not mapped: %d", r.cfg.BatchSize)
	}
	if r.cfg.PollWait != 300*time.Millisecond {
		t.Fatalf("poll wait not mapped: %v", r.cfg.PollWait)
	}
	if r.cfg.PublishTimeout != 2*time.Second {
		t.Fatalf("publish timeout not mapped: %v", r.cfg.PublishTimeout)
	}
	if r.cfg.ErrorPolicy != PolicySkip {
		t.Fatalf("error policy not mapped: %v", r.cfg.ErrorPolicy)
	}
	if r.cfg.MaxAttempts != 3 || r.cfg.Backoff.Base != 50*time.Millisecond ||
		r.cfg.Backoff.Multiplier != 1.5 || r.cfg.Backoff.Cap != 800*time.Millisecond {
		t.Fatalf("retry policy not mapped: %+v", r.cfg)
	}
}

func TestCompile_RejectsUnknownPieces(t *testing.T) {
	kafka.Register("nop", func() kafka.Adapter { return &nopAdapter{} })

	f := testSpec()
	f.Source.Kind = "amqp"
	if _, err := Compile(f, ""); err == nil {
		t.Fatal("want error for unsupported source kind")
	}

	f = testSpec()
	f.Pipeline.Transform = "nope"
	if _, err := Compile(f, ""); err == nil {
		t.Fatal("want error for unknown transform")
	}

	f = testSpec()
	f.Sink.Driver = "nope"
	if _, err := Compile(f, ""); err == nil {
		t.Fatal("want error for unknown sink")
	}
}
