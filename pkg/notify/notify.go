// Package notify publishes a single best-effort JSON event to Kafka after
// an indexing run finishes, using the shared pkg/kafka producer wrapper.
// There is no corresponding consumer: nothing downstream of a build reads
// the topic in this module.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/corvidx/invidx/pkg/config"
	"github.com/corvidx/invidx/pkg/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

// BuildComplete is the payload published after a build finishes.
type BuildComplete struct {
	DocCount   int    `json:"doc_count"`
	TermCount  int    `json:"term_count"`
	OutDir     string `json:"out_dir"`
	DurationMS int64  `json:"duration_ms"`
}

// Notifier publishes build-complete events. A nil *Notifier is valid:
// PublishComplete and Close on it are no-ops, and Ping reports an error.
type Notifier struct {
	producer *kafka.Producer
	brokers  []string
}

// New creates a Notifier backed by cfg. It does not contact the brokers;
// reachability is only tested by Ping and by PublishComplete.
func New(cfg config.KafkaConfig) *Notifier {
	return &Notifier{
		producer: kafka.NewProducer(cfg, cfg.CompleteTopic),
		brokers:  cfg.Brokers,
	}
}

// Ping dials the first configured broker to confirm it is reachable. It is
// used as a health.Check, not as part of the publish path.
func (n *Notifier) Ping(ctx context.Context) error {
	if n == nil || len(n.brokers) == 0 {
		return fmt.Errorf("kafka notifier has no configured brokers")
	}
	conn, err := kafkago.DialContext(ctx, "tcp", n.brokers[0])
	if err != nil {
		return fmt.Errorf("dialing kafka broker %s: %w", n.brokers[0], err)
	}
	return conn.Close()
}

// PublishComplete publishes one build-complete event. Failure is always
// safe to ignore — the notification is not part of the build's correctness
// contract.
func (n *Notifier) PublishComplete(ctx context.Context, ev BuildComplete) error {
	if n == nil || n.producer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.producer.Publish(ctx, kafka.Event{Key: ev.OutDir, Value: ev}); err != nil {
		return fmt.Errorf("publishing build-complete event: %w", err)
	}
	return nil
}

// Close releases the underlying Kafka writer.
func (n *Notifier) Close() error {
	if n == nil || n.producer == nil {
		return nil
	}
	return n.producer.Close()
}
