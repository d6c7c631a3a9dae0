package stream

import (
	"context"
	"errors"
	"time"
)

// ErrSourceClosed is returned by Poll once the partition claim behind a
// Source has been revoked or the broker connection is gone for good.
var ErrSourceClosed = errors.New("stream: source closed")

// Source is one partition's view of the input topic. Poll returns up to max
// records, waiting at most wait for the first one; an empty batch with a nil
// error means nothing arrived in time. Commit durably records that every
// offset up to and including offset has been fully processed.
type Source interface {
	Poll(ctx context.Context, max int, wait time.Duration) ([]Record, error)
	Commit(ctx context.Context, offset int64) error
}

// Sink publishes one record to the output topic. Publish returns nil only
// after the sink's durable acknowledgment; a fire-and-forget send must not
// report success early.
type Sink interface {
	Publish(ctx context.Context, rec Record) error
}
