package pipeline

import (
	"context"
	"errors"

	"relay/sink"
	"relay/source/kafka"
	"relay/stream"
)

// Runner owns one source adapter, one sink adapter, and the transform, and
// runs an independent Loop for every partition the source hands it. A stall
// on one partition (sink backoff, blocked record) never holds up the others.
type Runner struct {
	source kafka.Adapter
	sink   sink.Adapter
	fn     stream.Transform
	cfg    Config

	done chan struct{}
	err  error
}

func NewRunner() *Runner { return &Runner{done: make(chan struct{})} }

func (r *Runner) SetSource(s kafka.Adapter)       { r.source = s }
func (r *Runner) SetSink(s sink.Adapter)          { r.sink = s }
func (r *Runner) SetTransform(f stream.Transform) { r.fn = f }
func (r *Runner) SetConfig(c Config)              { r.cfg = c }

// runPartition is the kafka.RunFunc invoked once per assigned partition.
func (r *Runner) runPartition(ctx context.Context, src stream.Source) error {
	return NewLoop(src, r.sink, r.fn, r.cfg).Run(ctx)
}

func (r *Runner) Start(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	if r.sink == nil {
		return errors.New("runner: no sink configured")
	}
	if r.fn == nil {
		return errors.New("runner: no transform configured")
	}
	go func() {
		err := r.source.Run(ctx, r.runPartition)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		r.err = err
		close(r.done)
	}()
	return nil
}

// Done is closed once the source run has finished draining.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Err reports the terminal error of the source run: nil on clean shutdown,
// non-nil when a partition loop halted (publish retries exhausted, blocked
// record under the retry policy) or the group session failed. Valid only
// after Done is closed.
func (r *Runner) Err() error { return r.err }

func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	if r.sink != nil {
		errs = append(errs, r.sink.Close())
	}
	return errors.Join(errs...)
}
