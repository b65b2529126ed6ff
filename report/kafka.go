package report

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"

	"github.com/tezrry/spinbench/bench"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaExporter publishes one JSON-encoded Run per sample, keyed by trial
// name. Messages are held until Flush so nothing is sent while trials run.
type KafkaExporter struct {
	w       messageWriter
	pending []kafka.Message
}

func NewKafkaExporter(brokers []string, topic string) (*KafkaExporter, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka exporter needs at least one broker")
	}
	if len(topic) == 0 {
		return nil, fmt.Errorf("kafka exporter needs a topic")
	}

	return &KafkaExporter{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}, nil
}

func (e *KafkaExporter) Record(s bench.Sample) error {
	run := NewRun(s)
	value, err := sonic.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode %s: %w", run.Name, err)
	}

	e.pending = append(e.pending, kafka.Message{
		Key:   []byte(run.RunName),
		Value: value,
		Time:  time.Now(),
	})
	return nil
}

func (e *KafkaExporter) Flush(ctx context.Context) error {
	if len(e.pending) == 0 {
		return nil
	}
	if err := e.w.WriteMessages(ctx, e.pending...); err != nil {
		return fmt.Errorf("publish %d samples: %w", len(e.pending), err)
	}
	e.pending = e.pending[:0]
	return nil
}

func (e *KafkaExporter) Close() error {
	return e.w.Close()
}
