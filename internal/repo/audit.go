package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// AuditRepo defines the persistence operations for compliance audits.
// The store is append-only: there is no Update or Delete.
//
// Date-range queries take a half-open interval [from, to). Callers that think
// in inclusive calendar days pass to = lastDay + 24h.
type AuditRepo interface {
	// Create inserts a new audit and returns the persisted record.
	Create(ctx context.Context, audit domain.ComplianceAudit) (domain.ComplianceAudit, error)

	// GetByID retrieves a single audit by its UUID primary key.
	// Returns domain.ErrNotFound if no audit with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ComplianceAudit, error)

	// ListByJourneyID returns all audits for a journey ordered by audit_date ascending.
	ListByJourneyID(ctx context.Context, journeyID uuid.UUID) ([]domain.ComplianceAudit, error)

	// ListByDateRange returns every audit with from <= audit_date < to.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.ComplianceAudit, error)

	// ListByDriverAndDateRange returns audits in [from, to) whose journey
	// belongs to driverID.
	ListByDriverAndDateRange(ctx context.Context, driverID int64, from, to time.Time) ([]domain.ComplianceAudit, error)
}

// pgAuditRepo is the Postgres implementation of AuditRepo.
type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs an AuditRepo backed by the provided db connection.
func NewAuditRepo(db db) AuditRepo {
	return &pgAuditRepo{db: db}
}

const auditColumns = `a.id, a.journey_id, a.driver_id, a.audit_date, a.compliance_status,
		a.violated_rule, a.notes, a.created_at, a.updated_at`

func (r *pgAuditRepo) Create(ctx context.Context, audit domain.ComplianceAudit) (domain.ComplianceAudit, error) {
	q := `
		INSERT INTO compliance_audits AS a
			(journey_id, driver_id, audit_date, compliance_status, violated_rule, notes)
		VALUES (@journey_id, @driver_id, @audit_date, @compliance_status, @violated_rule, @notes)
		RETURNING ` + auditColumns

	args := pgx.NamedArgs{
		"journey_id":        audit.JourneyID,
		"driver_id":         audit.DriverID,
		"audit_date":        audit.AuditDate,
		"compliance_status": string(audit.ComplianceStatus),
		"violated_rule":     audit.ViolatedRule, // nil becomes NULL
		"notes":             audit.Notes,
	}

	result, err := scanAudit(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ComplianceAudit{}, fmt.Errorf("repo.AuditRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgAuditRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ComplianceAudit, error) {
	q := `SELECT ` + auditColumns + ` FROM compliance_audits a WHERE a.id = @id`

	result, err := scanAudit(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ComplianceAudit{}, fmt.Errorf("repo.AuditRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgAuditRepo) ListByJourneyID(ctx context.Context, journeyID uuid.UUID) ([]domain.ComplianceAudit, error) {
	q := `
		SELECT ` + auditColumns + `
		FROM compliance_audits a
		WHERE a.journey_id = @journey_id
		ORDER BY a.audit_date, a.created_at`

	audits, err := r.list(ctx, q, pgx.NamedArgs{"journey_id": journeyID})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListByJourneyID: %w", err)
	}
	return audits, nil
}

func (r *pgAuditRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.ComplianceAudit, error) {
	q := `
		SELECT ` + auditColumns + `
		FROM compliance_audits a
		WHERE a.audit_date >= @from AND a.audit_date < @to
		ORDER BY a.audit_date, a.created_at`

	audits, err := r.list(ctx, q, pgx.NamedArgs{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListByDateRange: %w", err)
	}
	return audits, nil
}

// ListByDriverAndDateRange filters on the journey's driver rather than the
// copy stored on the audit, so the journey remains the owner of the relation.
func (r *pgAuditRepo) ListByDriverAndDateRange(ctx context.Context, driverID int64, from, to time.Time) ([]domain.ComplianceAudit, error) {
	q := `
		SELECT ` + auditColumns + `
		FROM compliance_audits a
		JOIN journeys j ON j.id = a.journey_id
		WHERE j.driver_id = @driver_id
		  AND a.audit_date >= @from AND a.audit_date < @to
		ORDER BY a.audit_date, a.created_at`

	audits, err := r.list(ctx, q, pgx.NamedArgs{"driver_id": driverID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.ListByDriverAndDateRange: %w", err)
	}
	return audits, nil
}

// list runs a multi-row audit query. Always returns a non-nil slice.
func (r *pgAuditRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.ComplianceAudit, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := []domain.ComplianceAudit{}
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return audits, nil
}

// scanAudit maps a single database row into a domain.ComplianceAudit.
// It handles the UUID and nullable violated_rule conversions.
func scanAudit(s scanner) (domain.ComplianceAudit, error) {
	var (
		a         domain.ComplianceAudit
		id        pgtype.UUID
		journeyID pgtype.UUID
		status    string
		rule      pgtype.Text
	)

	err := s.Scan(&id, &journeyID, &a.DriverID, &a.AuditDate, &status,
		&rule, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ComplianceAudit{}, domain.ErrNotFound
		}
		return domain.ComplianceAudit{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.JourneyID = uuid.UUID(journeyID.Bytes)
	a.ComplianceStatus = domain.ComplianceStatus(status)
	if rule.Valid {
		v := rule.String
		a.ViolatedRule = &v
	}
	return a, nil
}
