package sink

import (
	"context"
	"fmt"

	"relay/stream"
)

// Adapter is the common behaviour every sink driver exposes. Publish must
// return only after the record is durably accepted downstream; the pipeline
// commits offsets on the strength of that return.
type Adapter interface {
	Configure(any) error // driver-specific config block ⇒ struct
	Publish(ctx context.Context, rec stream.Record) error
	Close() error // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
