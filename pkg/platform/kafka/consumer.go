package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is a single consumed record, handed to a Handler.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Handler processes one Message. Returning an error does not retry the
// message in place; the orchestrator's consumer wrapper is responsible
// for dead-lettering on error and always acknowledging.
type Handler func(ctx context.Context, msg Message) error

// Consumer is a manual-ack consumer-group client with a bounded worker
// pool: 3 concurrent workers per topic by default, tunable.
type Consumer struct {
	client  *kgo.Client
	logger  *slog.Logger
	workers int
}

// ConsumerConfig configures a Consumer instance.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
	Workers int // concurrent workers consuming this group; default 3
	Logger  *slog.Logger
}

// NewConsumer builds a consumer-group client in mark-then-commit mode so
// offsets only advance for records the Handler has returned from.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.AutoCommitMarks(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer client: %w", err)
	}
	return &Consumer{client: client, logger: logger, workers: cfg.Workers}, nil
}

// Run polls for records and dispatches them across the worker pool until
// ctx is cancelled. Each record is acknowledged (offset marked) after
// Handler returns, whether it returned an error or not; the orchestrator
// is expected to have already dead-lettered any failure by that point.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	jobs := make(chan *kgo.Record)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				msg := Message{
					Topic:     rec.Topic,
					Key:       rec.Key,
					Value:     rec.Value,
					Partition: rec.Partition,
					Offset:    rec.Offset,
					Timestamp: rec.Timestamp,
				}
				if err := handle(ctx, msg); err != nil {
					c.logger.ErrorContext(ctx, "consumer handler failed",
						"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
				}
				c.client.MarkCommitRecords(rec)
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(rec *kgo.Record) {
			select {
			case jobs <- rec:
			case <-ctx.Done():
			}
		})
	}
}

// Close releases the underlying client.
func (c *Consumer) Close() {
	c.client.Close()
}
