package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// EnsureTopics creates every topic in Topics if it does not already
// exist, applying its partition count and retention policy. Safe to call
// on every process startup.
func EnsureTopics(ctx context.Context, brokers []string) error {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return fmt.Errorf("kafka admin client: %w", err)
	}
	defer client.Close()

	admin := kadm.NewClient(client)
	defer admin.Close()

	for _, spec := range Topics {
		retentionMS := fmt.Sprintf("%d", spec.Retention.Milliseconds())
		configs := map[string]*string{"retention.ms": &retentionMS}
		resp, err := admin.CreateTopics(ctx, spec.Partitions, 1, configs, spec.Name)
		if err != nil {
			return fmt.Errorf("create topic %s: %w", spec.Name, err)
		}
		for _, r := range resp {
			if r.Err != nil && !isTopicExistsErr(r.Err) {
				return fmt.Errorf("create topic %s: %w", spec.Name, r.Err)
			}
		}
	}
	return nil
}

func isTopicExistsErr(err error) bool {
	return err != nil && strings.Contains(strings.ToUpper(err.Error()), "TOPIC_ALREADY_EXISTS")
}
