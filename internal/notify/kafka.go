package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka publishes each alert as a JSON event on a topic.
type Kafka struct {
	writer  *kafka.Writer
	key     string
	timeout time.Duration
}

type kafkaEvent struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// NewKafka returns nil when no brokers or no topic are given. key is used as
// the message key, typically the run id. timeout bounds each Send.
func NewKafka(brokers []string, topic, key string, timeout time.Duration) *Kafka {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		key:     key,
		timeout: timeout,
	}
}

func (k *Kafka) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(kafkaEvent{Text: text, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(k.key), Value: payload}); err != nil {
		return fmt.Errorf("publish alert to %s: %w", k.writer.Topic, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
