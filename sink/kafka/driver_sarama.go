package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"relay/sink"
	"relay/stream"
)

type Config struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1 (default -1)
	Version string   `yaml:"version"`
}

// driver publishes through a sync producer so Publish returns only once the
// broker has acknowledged the record at the configured acks level.
type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	if cfg.Acks == 0 {
		cfg.Acks = -1 // a sink that cannot ack durably is useless here
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	if cfg.Version != "" {
		ver, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return err
		}
		sc.Version = ver
	}
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	if sc.Producer.RequiredAcks == sarama.WaitForAll {
		// Idempotent production keeps broker-side retries from duplicating
		// records inside a single producer session.
		sc.Producer.Idempotent = true
		sc.Net.MaxOpenRequests = 1
	}

	var err error
	d.p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
	return err
}

func (d *driver) Publish(ctx context.Context, rec stream.Record) error {
	msg := &sarama.ProducerMessage{
		Topic:   d.cfg.Topic,
		Value:   sarama.ByteEncoder(rec.Value),
		Headers: toHeaders(rec.Headers),
	}
	if len(rec.Key) > 0 {
		msg.Key = sarama.ByteEncoder(rec.Key)
	}

	// SyncProducer has no context plumbing; bound the wait ourselves.
	done := make(chan error, 1)
	go func() {
		_, _, err := d.p.SendMessage(msg)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	return d.p.Close()
}

func toHeaders(src map[string][]byte) []sarama.RecordHeader {
	if len(src) == 0 {
		return nil
	}
	out := make([]sarama.RecordHeader, 0, len(src))
	for k, v := range src {
		out = append(out, sarama.RecordHeader{Key: []byte(k), Value: v})
	}
	return out
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
