// Package notify delivers HR escalations outside the process.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// MessageWriter is the part of *kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes one message per escalation, keyed by employee id
// so an employee's escalations stay ordered within a partition.
type KafkaNotifier struct {
	writer MessageWriter
	topic  string
}

func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return NewKafkaNotifierWithWriter(w, topic), nil
}

func NewKafkaNotifierWithWriter(w MessageWriter, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: w, topic: topic}
}

type escalationEvent struct {
	Type       string    `json:"type"`
	EmployeeID string    `json:"employee_id"`
	SessionID  string    `json:"session_id"`
	Reason     string    `json:"escalation_reason"`
	Score      float64   `json:"score"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotifyEscalation implements domain.EscalationNotifier.
func (n *KafkaNotifier) NotifyEscalation(ctx context.Context, esc *domain.Escalation) error {
	if esc == nil {
		return nil
	}
	payload, err := json.Marshal(escalationEvent{
		Type:       "hr_escalation",
		EmployeeID: string(esc.EmployeeID),
		SessionID:  string(esc.SessionID),
		Reason:     esc.Reason,
		Score:      esc.Score,
		Date:       esc.Date,
		CreatedAt:  esc.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal escalation event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(esc.EmployeeID),
		Value: payload,
		Time:  esc.CreatedAt,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish escalation to %s: %w", n.topic, err)
	}

	observability.LoggerFromContext(ctx).Info("escalation published",
		"topic", n.topic,
		"employee_id", esc.EmployeeID,
		"session_id", esc.SessionID,
	)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
