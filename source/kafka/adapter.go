package kafka

import (
	"context"

	"relay/stream"
)

// RunFunc is invoked by a driver once per assigned partition, with a Source
// scoped to that partition. It must return when ctx is done or the source
// closes; its error halts the driver.
type RunFunc func(ctx context.Context, src stream.Source) error

type Adapter interface {
	Configure(Config) error
	Run(context.Context, RunFunc) error
	Close() error
}
