package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/events"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
)

// AuditService records and serves compliance audits. Audits are append-only:
// every evaluation adds one and nothing here ever modifies an existing audit.
type AuditService struct {
	journeys  repo.JourneyRepo
	audits    repo.AuditRepo
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuditService constructs an AuditService. A nil publisher disables event
// publishing; a nil logger falls back to slog.Default().
func NewAuditService(journeys repo.JourneyRepo, audits repo.AuditRepo, publisher events.Publisher, logger *slog.Logger) *AuditService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{
		journeys:  journeys,
		audits:    audits,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for audit dates. Intended for tests.
func (s *AuditService) WithClock(now func() time.Time) *AuditService {
	s.now = now
	return s
}

// RecordAudit appends an audit capturing the journey's current classification.
// The audit date is the time of recording, not the journey date, so the
// history shows when each classification was produced. Blank notes are
// replaced with domain.DefaultAuditNotes.
//
// After the insert an audit.recorded event is published. A publish failure is
// logged and does not fail the call: the stored audit is the record of truth.
func (s *AuditService) RecordAudit(ctx context.Context, journey domain.Journey, violatedRule *string, notes string) (domain.ComplianceAudit, error) {
	if journey.ID == uuid.Nil {
		return domain.ComplianceAudit{}, fmt.Errorf("%w: journey id is required", domain.ErrValidation)
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = domain.DefaultAuditNotes
	}

	audit, err := s.audits.Create(ctx, domain.ComplianceAudit{
		JourneyID:        journey.ID,
		DriverID:         journey.DriverID,
		AuditDate:        s.now().UTC(),
		ComplianceStatus: journey.ComplianceStatus,
		ViolatedRule:     violatedRule,
		Notes:            notes,
	})
	if err != nil {
		return domain.ComplianceAudit{}, fmt.Errorf("service.AuditService.RecordAudit: %w", err)
	}

	s.publish(ctx, audit)
	return audit, nil
}

func (s *AuditService) publish(ctx context.Context, audit domain.ComplianceAudit) {
	env, err := events.NewAuditRecorded(audit)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "audit event not published",
			"audit_id", audit.ID,
			"journey_id", audit.JourneyID,
			"error", err,
		)
	}
}

// GetByID returns a single audit.
// Returns domain.ErrNotFound if no audit with that ID exists.
func (s *AuditService) GetByID(ctx context.Context, id uuid.UUID) (domain.ComplianceAudit, error) {
	audit, err := s.audits.GetByID(ctx, id)
	if err != nil {
		return domain.ComplianceAudit{}, fmt.Errorf("service.AuditService.GetByID: %w", err)
	}
	return audit, nil
}

// ListByJourney returns a journey's audit history, oldest first.
// Returns domain.ErrNotFound if the journey does not exist.
// Always returns a non-nil slice on success.
func (s *AuditService) ListByJourney(ctx context.Context, journeyID uuid.UUID) ([]domain.ComplianceAudit, error) {
	if _, err := s.journeys.GetByID(ctx, journeyID); err != nil {
		return nil, fmt.Errorf("service.AuditService.ListByJourney: %w", err)
	}
	audits, err := s.audits.ListByJourneyID(ctx, journeyID)
	if err != nil {
		return nil, fmt.Errorf("service.AuditService.ListByJourney: %w", err)
	}
	if audits == nil {
		return []domain.ComplianceAudit{}, nil
	}
	return audits, nil
}
