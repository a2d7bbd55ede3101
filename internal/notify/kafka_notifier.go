package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"fuelrecon/internal/domain"
)

// KafkaNotifier publishes DayClosed events to a Kafka topic so downstream
// consumers (audit log, webhooks, toasts) can react without coupling to
// the reconciliation service.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 100 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (n *KafkaNotifier) DayClosed(ctx context.Context, event domain.DayClosedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal day-closed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.StationID + "|" + event.Date),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("reconciliation.day-closed")},
		},
		Time: event.ClosedAt,
	}

	return n.writer.WriteMessages(ctx, msg)
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
