package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"relay/internal/pipeline"
	"relay/internal/transport"
)

type Engine struct {
	transport *transport.Server
	runner    *pipeline.Runner
}

// Run blocks until the context is cancelled or a partition loop halts with a
// fatal error. Shutdown is a drain: the source stops fetching, in-flight
// batches finish their publish-then-commit sequence, then connections close.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.transport.Serve()
	})

	g.Go(func() error {
		select {
		case <-e.runner.Done():
			return e.runner.Err()
		case <-gctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		e.transport.SetServing(false)
		// let the in-flight batch land before tearing connections down
		<-e.runner.Done()
		e.transport.Stop()
		return e.runner.Close()
	})

	return g.Wait()
}
