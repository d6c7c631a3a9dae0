package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"relay/internal/logging"
	"relay/internal/telemetry"
	"relay/stream"
)

// Policy decides what happens to a record the transform cannot interpret.
type Policy string

const (
	// PolicyRetry re-applies the transform with backoff and, if the record
	// still fails, halts the loop with the cursor pinned before it.
	PolicyRetry Policy = "retry"
	// PolicySkip logs the record and advances past it.
	PolicySkip Policy = "skip"
)

type BackoffConfig struct {
	Base       time.Duration
	Multiplier float64
	Cap        time.Duration
}

type Config struct {
	BatchSize      int
	PollWait       time.Duration
	IdleWait       time.Duration
	PublishTimeout time.Duration
	MaxAttempts    int
	Backoff        BackoffConfig
	ErrorPolicy    Policy
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.PollWait <= 0 {
		c.PollWait = 500 * time.Millisecond
	}
	if c.IdleWait <= 0 {
		c.IdleWait = 250 * time.Millisecond
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 10 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Backoff.Base <= 0 {
		c.Backoff.Base = 200 * time.Millisecond
	}
	if c.Backoff.Multiplier <= 0 {
		c.Backoff.Multiplier = 2.0
	}
	if c.Backoff.Cap <= 0 {
		c.Backoff.Cap = 10 * time.Second
	}
	if c.ErrorPolicy != PolicyRetry && c.ErrorPolicy != PolicySkip {
		c.ErrorPolicy = PolicyRetry
	}
}

// Loop drives one partition through the steady
// fetch → transform → publish → commit cycle. The commit for a batch runs
// only after every emitted record in it has a durable acknowledgment, so a
// crash at any point replays at most one batch and never skips data.
type Loop struct {
	src stream.Source
	snk stream.Sink
	fn  stream.Transform
	cfg Config
	cur *Cursor
	log *slog.Logger
}

func NewLoop(src stream.Source, snk stream.Sink, fn stream.Transform, cfg Config) *Loop {
	cfg.applyDefaults()
	return &Loop{src: src, snk: snk, fn: fn, cfg: cfg, cur: NewCursor(), log: logging.Named("pipeline")}
}

// Run blocks until ctx is cancelled or the source closes. Cancellation stops
// fetching immediately; the batch already in flight still completes its
// publish-then-commit sequence so no record stays published-but-uncommitted
// longer than necessary.
func (l *Loop) Run(ctx context.Context) error {
	drain := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			return nil
		}
		batch, err := l.src.Poll(ctx, l.cfg.BatchSize, l.cfg.PollWait)
		if len(batch) > 0 {
			if perr := l.process(drain, batch); perr != nil {
				return perr
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, stream.ErrSourceClosed),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			return fmt.Errorf("pipeline: poll: %w", err)
		}
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(l.cfg.IdleWait):
			}
		}
	}
}

func (l *Loop) process(ctx context.Context, batch []stream.Record) error {
	for _, rec := range batch {
		l.cur.Track(rec.Offset)
	}
	telemetry.RecordsConsumed.Add(float64(len(batch)))

	// Transform every record in partition order. Under the retry policy a
	// record that still errors after backoff blocks everything behind it;
	// the records before it are settled normally below.
	results := make([]stream.Result, len(batch))
	blocked := -1
	var blockErr error
	for i, rec := range batch {
		res := l.transform(rec)
		if res.Status == stream.StatusError {
			telemetry.RecordsErrored.Inc()
			if l.cfg.ErrorPolicy == PolicyRetry {
				blocked, blockErr = i, res.Err
				break
			}
			l.log.Error("record skipped by policy",
				"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset, "err", res.Err)
		}
		results[i] = res
	}

	// Publish the emit-set in order, each record waiting for the sink's
	// durable acknowledgment. Drops and policy-skipped errors resolve
	// without publishing.
	settled := len(batch)
	if blocked >= 0 {
		settled = blocked
	}
	for i := 0; i < settled; i++ {
		rec := batch[i]
		switch results[i].Status {
		case stream.StatusEmit:
			if err := l.publish(ctx, results[i].Record); err != nil {
				if cerr := l.commit(ctx); cerr != nil {
					l.log.Error("commit before halt failed", "err", cerr)
				}
				return fmt.Errorf("pipeline: publish offset %d: %w", rec.Offset, err)
			}
			telemetry.RecordsEmitted.Inc()
			l.log.Info("record emitted",
				"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset)
		case stream.StatusDrop:
			telemetry.RecordsDropped.Inc()
			l.log.Info("record dropped",
				"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset)
		case stream.StatusError:
			// already logged at transform time under the skip policy
		}
		l.cur.Resolve(rec.Offset)
	}

	if err := l.commit(ctx); err != nil {
		return err
	}
	if blocked >= 0 {
		rec := batch[blocked]
		return fmt.Errorf("pipeline: transform %s[%d]@%d failed after %d attempts: %w",
			rec.Topic, rec.Partition, rec.Offset, l.cfg.MaxAttempts, blockErr)
	}
	return nil
}

// transform applies the transform once, or up to MaxAttempts times with
// backoff under the retry policy.
func (l *Loop) transform(rec stream.Record) stream.Result {
	res := l.fn(rec)
	if res.Status != stream.StatusError || l.cfg.ErrorPolicy != PolicyRetry {
		return res
	}
	bo := l.newBackOff()
	for attempt := 1; attempt < l.cfg.MaxAttempts; attempt++ {
		time.Sleep(bo.NextBackOff())
		res = l.fn(rec)
		if res.Status != stream.StatusError {
			return res
		}
	}
	return res
}

// publish sends one record and retries transient sink failures with
// exponential backoff, bounded by MaxAttempts. The ctx passed in survives
// shutdown cancellation; each attempt is individually bounded by
// PublishTimeout.
func (l *Loop) publish(ctx context.Context, rec stream.Record) error {
	op := func() error {
		attempt, cancel := context.WithTimeout(ctx, l.cfg.PublishTimeout)
		defer cancel()
		start := time.Now()
		err := l.snk.Publish(attempt, rec)
		telemetry.PublishLatency.Observe(time.Since(start).Seconds())
		return err
	}
	notify := func(err error, delay time.Duration) {
		telemetry.PublishRetries.Inc()
		l.log.Warn("publish retry",
			"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset,
			"delay", delay, "err", err)
	}
	bo := backoff.WithMaxRetries(l.newBackOff(), uint64(l.cfg.MaxAttempts-1))
	return backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify)
}

func (l *Loop) commit(ctx context.Context) error {
	off, moved := l.cur.Advance()
	if !moved {
		return nil
	}
	if err := l.src.Commit(ctx, off); err != nil {
		return fmt.Errorf("pipeline: commit offset %d: %w", off, err)
	}
	telemetry.CommitsTotal.Inc()
	l.log.Debug("cursor advanced", "offset", off)
	return nil
}

func (l *Loop) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.cfg.Backoff.Base
	bo.Multiplier = l.cfg.Backoff.Multiplier
	bo.MaxInterval = l.cfg.Backoff.Cap
	bo.MaxElapsedTime = 0
	return bo
}
