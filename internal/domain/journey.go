package domain

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceStatus is the classification of a journey or audit.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "COMPLIANT"
	StatusAlert        ComplianceStatus = "ALERT"
	StatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
	// StatusPending is only held by a journey that has never been evaluated.
	StatusPending ComplianceStatus = "PENDING"
)

// Journey aggregates one driver's driving and rest time for one calendar date.
// There is at most one Journey per (DriverID, JourneyDate).
type Journey struct {
	ID                  uuid.UUID
	DriverID            int64
	VehicleID           int64
	CompanyID           int64
	JourneyDate         time.Time // midnight UTC of the calendar date
	TotalDrivingMinutes int
	TotalRestMinutes    int
	ComplianceStatus    ComplianceStatus
	DailyLimitExceeded  bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// JourneyEvaluation is the outcome of evaluating a journey's events: the
// persisted journey plus the derived data that is not stored with it.
type JourneyEvaluation struct {
	Journey      Journey
	ViolatedRule *string
	Intervals    []Interval
	Anomalies    []Anomaly
}

// DateOf returns midnight UTC of t's UTC calendar date. Journey days and the
// stored record day bounds are both UTC, whatever location t carries.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
