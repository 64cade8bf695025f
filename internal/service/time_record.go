package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
)

// TimeRecordService ingests raw driver events and serves them back per day.
// It holds the drivers repo because a record may only be stored for a known driver.
type TimeRecordService struct {
	drivers repo.DriverRepo
	records repo.TimeRecordRepo
}

// NewTimeRecordService constructs a TimeRecordService backed by the provided repos.
func NewTimeRecordService(drivers repo.DriverRepo, records repo.TimeRecordRepo) *TimeRecordService {
	return &TimeRecordService{drivers: drivers, records: records}
}

// Create validates the record, verifies the driver exists, then persists.
// Returns domain.ErrValidation if input violates business rules.
// Returns domain.ErrDriverNotFound if the driver does not exist.
func (s *TimeRecordService) Create(ctx context.Context, rec domain.TimeRecord) (domain.TimeRecord, error) {
	if err := validateTimeRecord(rec); err != nil {
		return domain.TimeRecord{}, err
	}
	if err := requireDriver(ctx, s.drivers, rec.DriverID); err != nil {
		return domain.TimeRecord{}, fmt.Errorf("service.TimeRecordService.Create: %w", err)
	}
	rec.Location = strings.TrimSpace(rec.Location)
	result, err := s.records.Create(ctx, rec)
	if err != nil {
		return domain.TimeRecord{}, fmt.Errorf("service.TimeRecordService.Create: %w", err)
	}
	return result, nil
}

// ListByDriverAndDate returns the driver's records for one calendar date,
// ordered by timestamp. Always returns a non-nil slice.
func (s *TimeRecordService) ListByDriverAndDate(ctx context.Context, driverID int64, date time.Time) ([]domain.TimeRecord, error) {
	records, err := s.records.ListByDriverAndDate(ctx, driverID, date)
	if err != nil {
		return nil, fmt.Errorf("service.TimeRecordService.ListByDriverAndDate: %w", err)
	}
	if records == nil {
		return []domain.TimeRecord{}, nil
	}
	return records, nil
}

// validateTimeRecord enforces the shape every stored record must have.
//   - DriverID must be positive.
//   - EventType must be one of the known types.
//   - EventTimestamp must be set.
func validateTimeRecord(rec domain.TimeRecord) error {
	if rec.DriverID <= 0 {
		return fmt.Errorf("%w: driver_id must be positive", domain.ErrValidation)
	}
	if !rec.EventType.Valid() {
		return fmt.Errorf("%w: unknown event_type %q", domain.ErrValidation, rec.EventType)
	}
	if rec.EventTimestamp.IsZero() {
		return fmt.Errorf("%w: event_timestamp is required", domain.ErrValidation)
	}
	if rec.VehicleID < 0 {
		return fmt.Errorf("%w: vehicle_id must not be negative", domain.ErrValidation)
	}
	return nil
}
