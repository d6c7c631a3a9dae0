package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"

	"relay/internal/logging"
	"relay/stream"
)

// SaramaDriver consumes the input topic through a sarama consumer group.
// Offset auto-commit is disabled: the pipeline loop decides when an offset
// is safe, and commits through the per-partition source it is handed.
type SaramaDriver struct {
	cfg   Config
	cl    sarama.Client
	group sarama.ConsumerGroup
}

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	// Commit control stays with the pipeline; an implicit commit here would
	// let the cursor pass records that were never durably published.
	sc.Consumer.Offsets.AutoCommit.Enable = false
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "oldest":
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	d.group, err = sarama.NewConsumerGroupFromClient(config.GroupID, d.cl)
	return err
}

func (d *SaramaDriver) Run(ctx context.Context, run RunFunc) error {
	handler := &groupHandler{run: run}

	for {
		if err := d.group.Consume(ctx, []string{d.cfg.Topic}, handler); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (d *SaramaDriver) Close() error {
	if d.group != nil {
		_ = d.group.Close()
	}
	if d.cl != nil {
		_ = d.cl.Close()
	}
	return nil
}

type groupHandler struct {
	run RunFunc
}

func (*groupHandler) Setup(sarama.ConsumerGroupSession) error { return nil }

func (*groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim runs one pipeline loop per claimed partition; sarama already
// gives each claim its own goroutine.
func (h *groupHandler) ConsumeClaim(
	sess sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	src := &partitionSource{
		sess:      sess,
		claim:     claim,
		topic:     claim.Topic(),
		partition: claim.Partition(),
	}
	logging.Named("kafka-source").Info("partition claimed",
		"topic", src.topic, "partition", src.partition, "initial_offset", claim.InitialOffset())
	return h.run(sess.Context(), src)
}

// committer is the slice of sarama.ConsumerGroupSession the source needs.
type committer interface {
	MarkOffset(topic string, partition int32, offset int64, metadata string)
	Commit()
}

// messages is the slice of sarama.ConsumerGroupClaim the source needs.
type messages interface {
	Messages() <-chan *sarama.ConsumerMessage
}

// partitionSource adapts one claim's push-style message channel to the
// pull-style stream.Source the pipeline loop polls.
type partitionSource struct {
	sess      committer
	claim     messages
	topic     string
	partition int32
}

func (p *partitionSource) Poll(ctx context.Context, max int, wait time.Duration) ([]stream.Record, error) {
	if max <= 0 {
		max = 1
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	var batch []stream.Record
	for len(batch) < max {
		select {
		case msg, ok := <-p.claim.Messages():
			if !ok {
				if len(batch) > 0 {
					return batch, nil
				}
				return nil, stream.ErrSourceClosed
			}
			batch = append(batch, fromMessage(msg))
		case <-timer.C:
			return batch, nil
		case <-ctx.Done():
			return batch, ctx.Err()
		}
	}
	return batch, nil
}

func (p *partitionSource) Commit(_ context.Context, offset int64) error {
	// MarkOffset takes the next offset the group should consume.
	p.sess.MarkOffset(p.topic, p.partition, offset+1, "")
	p.sess.Commit()
	return nil
}

func fromMessage(msg *sarama.ConsumerMessage) stream.Record {
	return stream.Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   toHeaderMap(msg.Headers),
		Timestamp: msg.Timestamp,
	}
}

func toHeaderMap(src []*sarama.RecordHeader) map[string][]byte {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(src))
	for _, h := range src {
		out[string(h.Key)] = h.Value
	}
	return out
}
