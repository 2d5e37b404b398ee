package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ScanTopic reads a topic from the beginning outside any consumer group,
// invoking fn for every record until fn returns false or ctx expires. It
// exists for operational tooling (dead-letter inspection and replay) where
// committed offsets must not move.
func ScanTopic(ctx context.Context, brokers []string, topic string, fn func(Message) bool) error {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return fmt.Errorf("kafka scan client: %w", err)
	}
	defer client.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		stop := false
		fetches.EachRecord(func(rec *kgo.Record) {
			if stop {
				return
			}
			if !fn(Message{
				Topic:     rec.Topic,
				Key:       rec.Key,
				Value:     rec.Value,
				Partition: rec.Partition,
				Offset:    rec.Offset,
				Timestamp: rec.Timestamp,
			}) {
				stop = true
			}
		})
		if stop {
			return nil
		}
	}
}
