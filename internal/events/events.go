// Package events publishes domain events about compliance audits so that
// downstream systems (fleet dashboards, payroll) can react without polling.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

const (
	AggregateJourney   = "journey"
	EventAuditRecorded = "audit.recorded"
)

// Envelope is the wire format of every published event.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
}

// AuditRecorded is the payload of an audit.recorded event.
type AuditRecorded struct {
	AuditID          uuid.UUID `json:"audit_id"`
	JourneyID        uuid.UUID `json:"journey_id"`
	DriverID         int64     `json:"driver_id"`
	AuditDate        time.Time `json:"audit_date"`
	ComplianceStatus string    `json:"compliance_status"`
	ViolatedRule     *string   `json:"violated_rule,omitempty"`
}

// NewAuditRecorded wraps a persisted audit in an envelope keyed by its journey,
// so all events for one journey land on the same partition in order.
func NewAuditRecorded(a domain.ComplianceAudit) (Envelope, error) {
	payload, err := json.Marshal(AuditRecorded{
		AuditID:          a.ID,
		JourneyID:        a.JourneyID,
		DriverID:         a.DriverID,
		AuditDate:        a.AuditDate,
		ComplianceStatus: string(a.ComplianceStatus),
		ViolatedRule:     a.ViolatedRule,
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("events.NewAuditRecorded: %w", err)
	}
	return Envelope{
		EventID:       uuid.New(),
		OccurredAt:    a.AuditDate,
		AggregateType: AggregateJourney,
		AggregateID:   a.JourneyID,
		EventType:     EventAuditRecorded,
		Payload:       payload,
	}, nil
}

// Publisher delivers envelopes to a message broker.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }

// KafkaPublisher writes envelopes as JSON to a single Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher returns a synchronous publisher that waits for all
// in-sync replicas to acknowledge each write.
func NewKafkaPublisher(brokers []string, topic, clientID string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("events.NewKafkaPublisher: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("events.NewKafkaPublisher: topic is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Transport:    &kafka.Transport{ClientID: clientID},
	}
	return &KafkaPublisher{writer: w}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	if p == nil || p.writer == nil {
		return errors.New("events.KafkaPublisher.Publish: publisher not initialized")
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(env.AggregateID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "occurred_at", Value: []byte(strconv.FormatInt(env.OccurredAt.UnixMilli(), 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events.KafkaPublisher.Publish: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the underlying connections.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
