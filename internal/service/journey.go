// Package service contains the business logic for the driver compliance API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/driver-compliance/backend/internal/compliance"
	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/lock"
	"github.com/pkordes/driver-compliance/backend/internal/metrics"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
)

// AuditRecorder appends an audit for an evaluated journey.
// *AuditService satisfies it; tests substitute a func-field mock.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, journey domain.Journey, violatedRule *string, notes string) (domain.ComplianceAudit, error)
}

// DayEvaluation is the result of EvaluateDay: the evaluation plus the audit
// recorded for it.
type DayEvaluation struct {
	domain.JourneyEvaluation
	Audit domain.ComplianceAudit
}

// JourneyService turns a driver's time records into a classified journey.
type JourneyService struct {
	drivers  repo.DriverRepo
	records  repo.TimeRecordRepo
	journeys repo.JourneyRepo
	recorder AuditRecorder
	locker   lock.Locker
	logger   *slog.Logger
}

// NewJourneyService constructs a JourneyService. A nil locker disables
// cross-instance locking (the unique constraint still holds); a nil logger
// falls back to slog.Default().
func NewJourneyService(
	drivers repo.DriverRepo,
	records repo.TimeRecordRepo,
	journeys repo.JourneyRepo,
	recorder AuditRecorder,
	locker lock.Locker,
	logger *slog.Logger,
) *JourneyService {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JourneyService{
		drivers:  drivers,
		records:  records,
		journeys: journeys,
		recorder: recorder,
		locker:   locker,
		logger:   logger,
	}
}

// EvaluateJourney reconstructs activity intervals from events, classifies the
// resulting totals, and stores the outcome on the driver's journey for the
// UTC calendar date of the first event. The journey is created PENDING if it does
// not yet exist. Every call recomputes from the full event set, so repeating
// it with the same events leaves the journey unchanged.
//
// Returns domain.ErrEmptyEventSet when events is empty,
// domain.ErrDriverNotFound when the driver does not exist, and
// domain.ErrUnorderedEvents when timestamps are not strictly ascending, and
// domain.ErrEventOutsideDay when events span more than one date.
func (s *JourneyService) EvaluateJourney(ctx context.Context, driverID int64, events []domain.TimeRecord) (domain.JourneyEvaluation, error) {
	if len(events) == 0 {
		return domain.JourneyEvaluation{}, domain.ErrEmptyEventSet
	}
	driver, err := lookupDriver(ctx, s.drivers, driverID)
	if err != nil {
		return domain.JourneyEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateJourney: %w", err)
	}
	return s.evaluate(ctx, driver, domain.DateOf(events[0].EventTimestamp), events)
}

func (s *JourneyService) evaluate(ctx context.Context, driver domain.Driver, date time.Time, events []domain.TimeRecord) (domain.JourneyEvaluation, error) {
	for _, e := range events {
		if e.DriverID != 0 && e.DriverID != driver.ID {
			return domain.JourneyEvaluation{}, fmt.Errorf("%w: time record %d belongs to driver %d", domain.ErrValidation, e.ID, e.DriverID)
		}
		if !domain.DateOf(e.EventTimestamp).Equal(date) {
			return domain.JourneyEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateJourney: %w: time record %d at %s, journey date %s",
				domain.ErrEventOutsideDay, e.ID, e.EventTimestamp.UTC().Format(time.RFC3339), date.Format(time.DateOnly))
		}
	}

	rec, err := compliance.Reconstruct(events)
	if err != nil {
		return domain.JourneyEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateJourney: %w", err)
	}

	release, err := s.locker.Lock(ctx, lock.JourneyKey(driver.ID, date))
	if err != nil {
		return domain.JourneyEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateJourney: %w", err)
	}
	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			s.logger.WarnContext(ctx, "journey lock release failed", "driver_id", driver.ID, "error", rerr)
		}
	}()

	journey, err := s.findOrCreate(ctx, driver, date)
	if err != nil {
		return domain.JourneyEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateJourney: %w", err)
	}

	driving, rest := compliance.Totals(rec.Intervals)
	verdict := compliance.Evaluate(driving, rest)

	journey.TotalDrivingMinutes = driving
	journey.TotalRestMinutes = rest
	journey.ComplianceStatus = verdict.Status
	journey.DailyLimitExceeded = verdict.DailyLimitExceeded
	journey.CompanyID = driver.CompanyID
	if v := firstVehicle(events); v != 0 {
		journey.VehicleID = v
	}

	journey, err = s.journeys.Update(ctx, journey)
	if err != nil {
		return domain.JourneyEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateJourney: %w", err)
	}

	metrics.ObserveEvaluation(string(verdict.Status), len(rec.Anomalies))
	for _, a := range rec.Anomalies {
		s.logger.DebugContext(ctx, "interval anomaly",
			"journey_id", journey.ID,
			"at", a.At,
			"event_type", a.EventType,
			"message", a.Message,
		)
	}
	s.logger.InfoContext(ctx, "journey evaluated",
		"journey_id", journey.ID,
		"driver_id", driver.ID,
		"journey_date", date.Format(time.DateOnly),
		"driving_minutes", driving,
		"rest_minutes", rest,
		"status", verdict.Status,
		"anomalies", len(rec.Anomalies),
	)

	return domain.JourneyEvaluation{
		Journey:      journey,
		ViolatedRule: verdict.Rule(),
		Intervals:    rec.Intervals,
		Anomalies:    rec.Anomalies,
	}, nil
}

// findOrCreate returns the driver's journey for date, creating a PENDING one
// when absent. Create resolves a concurrent insert of the same key to the
// existing row, so both racers end up updating one journey.
func (s *JourneyService) findOrCreate(ctx context.Context, driver domain.Driver, date time.Time) (domain.Journey, error) {
	j, err := s.journeys.GetByDriverAndDate(ctx, driver.ID, date)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Journey{}, err
	}
	return s.journeys.Create(ctx, domain.Journey{
		DriverID:         driver.ID,
		CompanyID:        driver.CompanyID,
		JourneyDate:      date,
		ComplianceStatus: domain.StatusPending,
	})
}

// EvaluateDay loads the driver's stored time records for date, evaluates them
// and appends an audit of the outcome. Blank notes default to
// domain.DefaultAuditNotes.
func (s *JourneyService) EvaluateDay(ctx context.Context, driverID int64, date time.Time, notes string) (DayEvaluation, error) {
	var (
		driver domain.Driver
		events []domain.TimeRecord
	)
	date = domain.DateOf(date)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		driver, err = lookupDriver(gctx, s.drivers, driverID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.records.ListByDriverAndDate(gctx, driverID, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return DayEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateDay: %w", err)
	}
	if len(events) == 0 {
		return DayEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateDay: %w", domain.ErrEmptyEventSet)
	}

	eval, err := s.evaluate(ctx, driver, date, events)
	if err != nil {
		return DayEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateDay: %w", err)
	}
	audit, err := s.recorder.RecordAudit(ctx, eval.Journey, eval.ViolatedRule, notes)
	if err != nil {
		return DayEvaluation{}, fmt.Errorf("service.JourneyService.EvaluateDay: %w", err)
	}
	return DayEvaluation{JourneyEvaluation: eval, Audit: audit}, nil
}

// GetByID returns a single journey.
// Returns domain.ErrNotFound if no journey with that ID exists.
func (s *JourneyService) GetByID(ctx context.Context, id uuid.UUID) (domain.Journey, error) {
	j, err := s.journeys.GetByID(ctx, id)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("service.JourneyService.GetByID: %w", err)
	}
	return j, nil
}

// ListByDriver returns one page of the driver's journeys, newest first, and
// the total number of journeys the driver has.
// Returns domain.ErrDriverNotFound if the driver does not exist.
func (s *JourneyService) ListByDriver(ctx context.Context, driverID int64, p domain.PaginationParams) ([]domain.Journey, int64, error) {
	if err := requireDriver(ctx, s.drivers, driverID); err != nil {
		return nil, 0, fmt.Errorf("service.JourneyService.ListByDriver: %w", err)
	}
	journeys, total, err := s.journeys.ListByDriver(ctx, driverID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.JourneyService.ListByDriver: %w", err)
	}
	if journeys == nil {
		journeys = []domain.Journey{}
	}
	return journeys, total, nil
}

func firstVehicle(events []domain.TimeRecord) int64 {
	for _, e := range events {
		if e.VehicleID != 0 {
			return e.VehicleID
		}
	}
	return 0
}
