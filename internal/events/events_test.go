package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/events"
)

func TestNewAuditRecorded(t *testing.T) {
	rule := "insufficient daily rest"
	audit := domain.ComplianceAudit{
		ID:               uuid.New(),
		JourneyID:        uuid.New(),
		DriverID:         9,
		AuditDate:        time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC),
		ComplianceStatus: domain.StatusAlert,
		ViolatedRule:     &rule,
	}

	env, err := events.NewAuditRecorded(audit)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.UUID{}, env.EventID)
	assert.Equal(t, events.EventAuditRecorded, env.EventType)
	assert.Equal(t, events.AggregateJourney, env.AggregateType)
	assert.Equal(t, audit.JourneyID, env.AggregateID)
	assert.True(t, env.OccurredAt.Equal(audit.AuditDate))

	var payload events.AuditRecorded
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, audit.ID, payload.AuditID)
	assert.EqualValues(t, 9, payload.DriverID)
	assert.Equal(t, "ALERT", payload.ComplianceStatus)
	require.NotNil(t, payload.ViolatedRule)
	assert.Equal(t, rule, *payload.ViolatedRule)
}

func TestNewAuditRecorded_OmitsNilRule(t *testing.T) {
	env, err := events.NewAuditRecorded(domain.ComplianceAudit{ComplianceStatus: domain.StatusCompliant})

	require.NoError(t, err)
	assert.NotContains(t, string(env.Payload), "violated_rule")
}

func TestNewKafkaPublisher_Validation(t *testing.T) {
	_, err := events.NewKafkaPublisher(nil, "compliance.audits", "test")
	assert.Error(t, err)

	_, err = events.NewKafkaPublisher([]string{"localhost:9092"}, "", "test")
	assert.Error(t, err)
}

func TestKafkaPublisher_NilIsSafe(t *testing.T) {
	var p *events.KafkaPublisher

	assert.Error(t, p.Publish(context.Background(), events.Envelope{}))
	assert.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, events.NopPublisher{}.Publish(context.Background(), events.Envelope{}))
}
