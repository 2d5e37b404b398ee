// Package kafka wraps twmb/franz-go into the producer/consumer shapes the
// event-bus orchestrator needs: idempotent, keyed publish with
// full-replica acknowledgment, and manual-ack consumption with a
// configurable worker pool per consumer group.
package kafka

import "time"

// Topic names are opaque labels; consumers select by label.
const (
	TopicSearchRequests        = "search-requests"
	TopicSearchResultsRaw      = "search-results-raw"
	TopicSearchResultsValidated = "search-results-validated"
	TopicWorkflowErrors        = "workflow-errors"
)

// TopicSpec describes the partition/retention policy for a topic, used by
// the admin bootstrap step.
type TopicSpec struct {
	Name       string
	Partitions int32
	Retention  time.Duration
}

// Topics is the full set of topics the orchestrator depends on.
var Topics = []TopicSpec{
	{Name: TopicSearchRequests, Partitions: 3, Retention: 7 * 24 * time.Hour},
	{Name: TopicSearchResultsRaw, Partitions: 3, Retention: 7 * 24 * time.Hour},
	{Name: TopicSearchResultsValidated, Partitions: 3, Retention: 7 * 24 * time.Hour},
	{Name: TopicWorkflowErrors, Partitions: 1, Retention: 30 * 24 * time.Hour},
}
