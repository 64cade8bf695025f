package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAuditNotes is stored when an audit is recorded without caller notes.
const DefaultAuditNotes = "Automatic audit"

// ComplianceAudit is an immutable record of one classification of a journey.
// A new audit is appended on every evaluation; audits are never updated.
type ComplianceAudit struct {
	ID               uuid.UUID
	JourneyID        uuid.UUID
	DriverID         int64
	AuditDate        time.Time
	ComplianceStatus ComplianceStatus
	ViolatedRule     *string // nil when the journey was compliant
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
