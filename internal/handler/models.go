package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// The types below are the JSON wire shapes defined in openapi.yaml.
// Dates without a time of day use openapi_types.Date ("2006-01-02").

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// CreateDriverRequest is the body of POST /drivers.
type CreateDriverRequest struct {
	Name          string  `json:"name"`
	LicenseNumber *string `json:"license_number,omitempty"`
	CompanyId     *int64  `json:"company_id,omitempty"`
}

// Driver is the wire form of domain.Driver.
type Driver struct {
	Id            int64     `json:"id"`
	Name          string    `json:"name"`
	LicenseNumber string    `json:"license_number"`
	CompanyId     int64     `json:"company_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateTimeRecordRequest is the body of POST /drivers/{driverID}/time-records.
type CreateTimeRecordRequest struct {
	EventType      string     `json:"event_type"`
	EventTimestamp *time.Time `json:"event_timestamp"`
	VehicleId      *int64     `json:"vehicle_id,omitempty"`
	Location       *string    `json:"location,omitempty"`
}

// TimeRecord is the wire form of domain.TimeRecord.
type TimeRecord struct {
	Id             int64     `json:"id"`
	DriverId       int64     `json:"driver_id"`
	VehicleId      int64     `json:"vehicle_id"`
	EventTimestamp time.Time `json:"event_timestamp"`
	EventType      string    `json:"event_type"`
	Location       string    `json:"location,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TimeRecordList is the body of GET /drivers/{driverID}/time-records.
type TimeRecordList struct {
	Date openapi_types.Date `json:"date"`
	Data []TimeRecord       `json:"data"`
}

// EvaluateJourneyRequest is the body of POST /drivers/{driverID}/journeys/evaluate.
type EvaluateJourneyRequest struct {
	Date  *openapi_types.Date `json:"date"`
	Notes *string             `json:"notes,omitempty"`
}

// Journey is the wire form of domain.Journey.
type Journey struct {
	Id                  uuid.UUID          `json:"id"`
	DriverId            int64              `json:"driver_id"`
	VehicleId           int64              `json:"vehicle_id"`
	CompanyId           int64              `json:"company_id"`
	JourneyDate         openapi_types.Date `json:"journey_date"`
	TotalDrivingMinutes int                `json:"total_driving_minutes"`
	TotalRestMinutes    int                `json:"total_rest_minutes"`
	ComplianceStatus    string             `json:"compliance_status"`
	DailyLimitExceeded  bool               `json:"daily_limit_exceeded"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// JourneyList is the body of GET /drivers/{driverID}/journeys.
type JourneyList struct {
	Data       []Journey  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Audit is the wire form of domain.ComplianceAudit.
type Audit struct {
	Id               uuid.UUID `json:"id"`
	JourneyId        uuid.UUID `json:"journey_id"`
	DriverId         int64     `json:"driver_id"`
	AuditDate        time.Time `json:"audit_date"`
	ComplianceStatus string    `json:"compliance_status"`
	ViolatedRule     *string   `json:"violated_rule"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// AuditList is the body of GET /journeys/{journeyID}/audits.
type AuditList struct {
	Data []Audit `json:"data"`
}

// Interval is the wire form of domain.Interval.
type Interval struct {
	Kind    string    `json:"kind"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Minutes int       `json:"minutes"`
}

// Anomaly is the wire form of domain.Anomaly.
type Anomaly struct {
	At        time.Time `json:"at"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
}

// EvaluationResponse is the body of a successful journey evaluation.
type EvaluationResponse struct {
	Journey   Journey    `json:"journey"`
	Audit     Audit      `json:"audit"`
	Intervals []Interval `json:"intervals"`
	Anomalies []Anomaly  `json:"anomalies"`
}

// ComplianceReport is the JSON body of GET /reports/compliance.
type ComplianceReport struct {
	ReportName         string             `json:"report_name"`
	GeneratedDate      time.Time          `json:"generated_date"`
	DriverId           *int64             `json:"driver_id"`
	StartDate          openapi_types.Date `json:"start_date"`
	EndDate            openapi_types.Date `json:"end_date"`
	TotalAudits        int                `json:"total_audits"`
	CompliantAudits    int                `json:"compliant_audits"`
	NonCompliantAudits int                `json:"non_compliant_audits"`
	ComplianceRate     float64            `json:"compliance_rate"`
	Audits             []Audit            `json:"audits"`
}

// --- mapping helpers --------------------------------------------------------

func toDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: domain.DateOf(t)}
}

func driverToResponse(d domain.Driver) Driver {
	return Driver{
		Id:            d.ID,
		Name:          d.Name,
		LicenseNumber: d.LicenseNumber,
		CompanyId:     d.CompanyID,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func timeRecordToResponse(rec domain.TimeRecord) TimeRecord {
	return TimeRecord{
		Id:             rec.ID,
		DriverId:       rec.DriverID,
		VehicleId:      rec.VehicleID,
		EventTimestamp: rec.EventTimestamp,
		EventType:      string(rec.EventType),
		Location:       rec.Location,
		CreatedAt:      rec.CreatedAt,
	}
}

func journeyToResponse(j domain.Journey) Journey {
	return Journey{
		Id:                  j.ID,
		DriverId:            j.DriverID,
		VehicleId:           j.VehicleID,
		CompanyId:           j.CompanyID,
		JourneyDate:         toDate(j.JourneyDate),
		TotalDrivingMinutes: j.TotalDrivingMinutes,
		TotalRestMinutes:    j.TotalRestMinutes,
		ComplianceStatus:    string(j.ComplianceStatus),
		DailyLimitExceeded:  j.DailyLimitExceeded,
		CreatedAt:           j.CreatedAt,
		UpdatedAt:           j.UpdatedAt,
	}
}

func auditToResponse(a domain.ComplianceAudit) Audit {
	return Audit{
		Id:               a.ID,
		JourneyId:        a.JourneyID,
		DriverId:         a.DriverID,
		AuditDate:        a.AuditDate,
		ComplianceStatus: string(a.ComplianceStatus),
		ViolatedRule:     a.ViolatedRule,
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt,
	}
}

func auditsToResponse(audits []domain.ComplianceAudit) []Audit {
	out := make([]Audit, len(audits))
	for i, a := range audits {
		out[i] = auditToResponse(a)
	}
	return out
}
