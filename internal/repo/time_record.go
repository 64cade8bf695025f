package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// TimeRecordRepo defines the persistence operations for raw driver events.
// Records are immutable, so there is no Update or Delete.
type TimeRecordRepo interface {
	// Create inserts a new time record and returns the persisted record.
	Create(ctx context.Context, rec domain.TimeRecord) (domain.TimeRecord, error)

	// ListByDriverAndDate returns every record for the driver whose timestamp
	// falls on the given calendar date (UTC), ordered by timestamp ascending.
	ListByDriverAndDate(ctx context.Context, driverID int64, date time.Time) ([]domain.TimeRecord, error)
}

// pgTimeRecordRepo is the Postgres implementation of TimeRecordRepo.
type pgTimeRecordRepo struct {
	db db
}

// NewTimeRecordRepo constructs a TimeRecordRepo backed by the provided db connection.
func NewTimeRecordRepo(db db) TimeRecordRepo {
	return &pgTimeRecordRepo{db: db}
}

func (r *pgTimeRecordRepo) Create(ctx context.Context, rec domain.TimeRecord) (domain.TimeRecord, error) {
	const q = `
		INSERT INTO time_records (driver_id, vehicle_id, event_timestamp, event_type, location)
		VALUES (@driver_id, @vehicle_id, @event_timestamp, @event_type, @location)
		RETURNING id, driver_id, vehicle_id, event_timestamp, event_type, location, created_at`

	args := pgx.NamedArgs{
		"driver_id":       rec.DriverID,
		"vehicle_id":      rec.VehicleID,
		"event_timestamp": rec.EventTimestamp,
		"event_type":      string(rec.EventType),
		"location":        rec.Location,
	}

	result, err := scanTimeRecord(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TimeRecord{}, fmt.Errorf("repo.TimeRecordRepo.Create: %w", err)
	}
	return result, nil
}

// ListByDriverAndDate uses a half-open [date, date+1d) range so the
// (driver_id, event_timestamp) index serves the query.
func (r *pgTimeRecordRepo) ListByDriverAndDate(ctx context.Context, driverID int64, date time.Time) ([]domain.TimeRecord, error) {
	const q = `
		SELECT id, driver_id, vehicle_id, event_timestamp, event_type, location, created_at
		FROM time_records
		WHERE driver_id = @driver_id
		  AND event_timestamp >= @from
		  AND event_timestamp <  @to
		ORDER BY event_timestamp, id`

	from := domain.DateOf(date)
	args := pgx.NamedArgs{"driver_id": driverID, "from": from, "to": from.AddDate(0, 0, 1)}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TimeRecordRepo.ListByDriverAndDate: %w", err)
	}
	defer rows.Close()

	records := []domain.TimeRecord{}
	for rows.Next() {
		rec, err := scanTimeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TimeRecordRepo.ListByDriverAndDate: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TimeRecordRepo.ListByDriverAndDate: rows: %w", err)
	}
	return records, nil
}

func scanTimeRecord(s scanner) (domain.TimeRecord, error) {
	var (
		rec domain.TimeRecord
		typ string
	)
	err := s.Scan(&rec.ID, &rec.DriverID, &rec.VehicleID, &rec.EventTimestamp, &typ, &rec.Location, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TimeRecord{}, domain.ErrNotFound
		}
		return domain.TimeRecord{}, err
	}
	rec.EventType = domain.EventType(typ)
	return rec, nil
}
