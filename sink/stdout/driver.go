package stdout

import (
	"context"
	"fmt"
	"sync/atomic"

	"relay/sink"
	"relay/stream"
)

// Config controls what the debug sink prints per record.
type Config struct {
	PrintValue    bool `yaml:"print_value"`
	ValueMaxBytes int  `yaml:"value_max_bytes"`
}

// driver writes records to stdout for local runs. A completed write is the
// durability acknowledgment here, so Publish acks synchronously.
type driver struct {
	cfg Config
}

var seq uint64

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	return nil
}

func (d *driver) Publish(_ context.Context, rec stream.Record) error {
	n := atomic.AddUint64(&seq, 1)
	if d.cfg.PrintValue {
		v := rec.Value
		if d.cfg.ValueMaxBytes > 0 && len(v) > d.cfg.ValueMaxBytes {
			v = v[:d.cfg.ValueMaxBytes]
		}
		fmt.Printf("[sink %06d] %s[%d]@%d %s\n", n, rec.Topic, rec.Partition, rec.Offset, v)
		return nil
	}
	fmt.Printf("[sink %06d] %s[%d]@%d\n", n, rec.Topic, rec.Partition, rec.Offset)
	return nil
}

func (d *driver) Close() error { return nil }

func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
