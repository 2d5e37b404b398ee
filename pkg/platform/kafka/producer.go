package kafka

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer publishes events with idempotent, keyed-partition guarantees:
// all events for a session route to a deterministic partition, preserving
// per-session ordering. franz-go enables idempotent production by
// default; RequiredAcks(AllISR) below makes the full-replica-ack
// requirement explicit.
type Producer struct {
	client *kgo.Client
}

// NewProducer dials brokers and configures the client for idempotent,
// all-ISR-acknowledged production.
func NewProducer(brokers []string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1 << 20),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer client: %w", err)
	}
	return &Producer{client: client}, nil
}

// SessionKey derives the partition-routing key for a session, so every
// event belonging to one session lands in the same partition. franz-go's default partitioner
// hashes the record key consistently, so passing the same key for every
// event in a session is sufficient; this helper exists to keep that key
// derivation in one place.
func SessionKey(sessionID string) []byte {
	return []byte(sessionID)
}

// PartitionFor is a convenience for callers that need to reason about
// partition assignment directly (e.g. the soft-deadline sweep correlating
// logs across a session): session-hash mod partition count.
func PartitionFor(sessionID string, partitionCount int32) int32 {
	if partitionCount <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int32(h.Sum32() % uint32(partitionCount))
}

// Publish synchronously produces value to topic keyed by key, blocking
// until the broker acknowledges it per the configured RequiredAcks.
func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	res := p.client.ProduceSync(ctx, record)
	return res.FirstErr()
}

// Close flushes any buffered records and releases the underlying client.
func (p *Producer) Close() {
	p.client.Close()
}
