package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// AuditEventProducer publishes license/ticket audit events (mockable in tests).
type AuditEventProducer interface {
	ProduceAuditEvent(ctx context.Context, event string, payload map[string]interface{})
}

// Producer writes audit events to a Kafka topic (best-effort, never blocks
// the API outcome). With no brokers or topic configured all methods are no-ops.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// ProduceAuditEvent publishes one event. payload carries the affected ids
// (license_id, ticket_id) and whatever fields changed.
func (p *Producer) ProduceAuditEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("kafka: marshal audit event")
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("kafka: write audit event")
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
