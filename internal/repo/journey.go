// Package repo contains all database access logic for the driver compliance API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// JourneyRepo defines the persistence operations for Journeys.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type JourneyRepo interface {
	// Create inserts a new journey and returns the persisted record.
	// If a journey already exists for (DriverID, JourneyDate) the existing row
	// is returned unchanged instead, so concurrent creates for the same key
	// never produce two rows.
	Create(ctx context.Context, journey domain.Journey) (domain.Journey, error)

	// GetByID retrieves a single journey by its UUID primary key.
	// Returns domain.ErrNotFound if no journey with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Journey, error)

	// GetByDriverAndDate retrieves the journey for one driver-day.
	// Returns domain.ErrNotFound if the driver has no journey on that date.
	GetByDriverAndDate(ctx context.Context, driverID int64, date time.Time) (domain.Journey, error)

	// ListByDriver returns one page of a driver's journeys, most recent first,
	// and the total number of journeys for that driver.
	ListByDriver(ctx context.Context, driverID int64, p domain.PaginationParams) ([]domain.Journey, int64, error)

	// Update overwrites the computed fields of an existing journey and returns
	// the updated record. Returns domain.ErrNotFound if no journey with that ID exists.
	Update(ctx context.Context, journey domain.Journey) (domain.Journey, error)
}

// pgJourneyRepo is the Postgres implementation of JourneyRepo.
type pgJourneyRepo struct {
	db db
}

// NewJourneyRepo constructs a JourneyRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewJourneyRepo(db db) JourneyRepo {
	return &pgJourneyRepo{db: db}
}

const journeyColumns = `id, driver_id, vehicle_id, company_id, journey_date,
		total_driving_minutes, total_rest_minutes, compliance_status,
		daily_limit_exceeded, created_at, updated_at`

// Create inserts a journey or returns the existing row on (driver_id, journey_date)
// conflict. DO UPDATE SET rewrites driver_id to itself so RETURNING yields the
// conflicting row; DO NOTHING would return no row at all.
func (r *pgJourneyRepo) Create(ctx context.Context, journey domain.Journey) (domain.Journey, error) {
	q := `
		INSERT INTO journeys (driver_id, vehicle_id, company_id, journey_date,
			total_driving_minutes, total_rest_minutes, compliance_status, daily_limit_exceeded)
		VALUES (@driver_id, @vehicle_id, @company_id, @journey_date,
			@total_driving_minutes, @total_rest_minutes, @compliance_status, @daily_limit_exceeded)
		ON CONFLICT ON CONSTRAINT journeys_driver_date_key
			DO UPDATE SET driver_id = EXCLUDED.driver_id
		RETURNING ` + journeyColumns

	row := r.db.QueryRow(ctx, q, journeyArgs(journey))
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a journey by primary key.
func (r *pgJourneyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Journey, error) {
	q := `SELECT ` + journeyColumns + ` FROM journeys WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByDriverAndDate retrieves a journey by its natural key.
func (r *pgJourneyRepo) GetByDriverAndDate(ctx context.Context, driverID int64, date time.Time) (domain.Journey, error) {
	q := `
		SELECT ` + journeyColumns + `
		FROM journeys
		WHERE driver_id = @driver_id AND journey_date = @journey_date`

	args := pgx.NamedArgs{"driver_id": driverID, "journey_date": domain.DateOf(date)}
	row := r.db.QueryRow(ctx, q, args)
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.GetByDriverAndDate: %w", err)
	}
	return result, nil
}

// ListByDriver returns a page of journeys ordered by journey_date descending.
func (r *pgJourneyRepo) ListByDriver(ctx context.Context, driverID int64, p domain.PaginationParams) ([]domain.Journey, int64, error) {
	const countQ = `SELECT count(*) FROM journeys WHERE driver_id = @driver_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"driver_id": driverID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.JourneyRepo.ListByDriver: count: %w", err)
	}

	q := `
		SELECT ` + journeyColumns + `
		FROM journeys
		WHERE driver_id = @driver_id
		ORDER BY journey_date DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"driver_id": driverID, "limit": p.Limit, "offset": p.Offset()}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.JourneyRepo.ListByDriver: %w", err)
	}
	defer rows.Close()

	journeys := []domain.Journey{}
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.JourneyRepo.ListByDriver: scan: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.JourneyRepo.ListByDriver: rows: %w", err)
	}
	return journeys, total, nil
}

// Update overwrites the computed fields of a journey and returns the updated record.
// driver_id and journey_date form the natural key and are never changed.
func (r *pgJourneyRepo) Update(ctx context.Context, journey domain.Journey) (domain.Journey, error) {
	q := `
		UPDATE journeys
		SET vehicle_id            = @vehicle_id,
		    company_id            = @company_id,
		    total_driving_minutes = @total_driving_minutes,
		    total_rest_minutes    = @total_rest_minutes,
		    compliance_status     = @compliance_status,
		    daily_limit_exceeded  = @daily_limit_exceeded,
		    updated_at            = now()
		WHERE id = @id
		RETURNING ` + journeyColumns

	args := journeyArgs(journey)
	args["id"] = journey.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanJourney(row)
	if err != nil {
		return domain.Journey{}, fmt.Errorf("repo.JourneyRepo.Update: %w", err)
	}
	return result, nil
}

func journeyArgs(j domain.Journey) pgx.NamedArgs {
	status := j.ComplianceStatus
	if status == "" {
		status = domain.StatusPending
	}
	return pgx.NamedArgs{
		"driver_id":             j.DriverID,
		"vehicle_id":            j.VehicleID,
		"company_id":            j.CompanyID,
		"journey_date":          domain.DateOf(j.JourneyDate),
		"total_driving_minutes": j.TotalDrivingMinutes,
		"total_rest_minutes":    j.TotalRestMinutes,
		"compliance_status":     string(status),
		"daily_limit_exceeded":  j.DailyLimitExceeded,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanJourney maps a single database row into a domain.Journey.
// It handles the UUID, date, and status conversions.
func scanJourney(s scanner) (domain.Journey, error) {
	var (
		j      domain.Journey
		id     pgtype.UUID
		date   pgtype.Date
		status string
	)

	err := s.Scan(&id, &j.DriverID, &j.VehicleID, &j.CompanyID, &date,
		&j.TotalDrivingMinutes, &j.TotalRestMinutes, &status,
		&j.DailyLimitExceeded, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Journey{}, domain.ErrNotFound
		}
		return domain.Journey{}, err
	}

	j.ID = uuid.UUID(id.Bytes)
	j.JourneyDate = domain.DateOf(date.Time)
	j.ComplianceStatus = domain.ComplianceStatus(status)
	return j, nil
}
