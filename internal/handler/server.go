// Package handler implements the HTTP handlers for the driver compliance API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, journey.go, etc.) but all share the same Server struct so
// they can access its dependencies. Routes wires them onto a chi router whose
// paths mirror openapi.yaml.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/service"
)

// DriverServicer defines the driver operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type DriverServicer interface {
	Create(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	GetByID(ctx context.Context, id int64) (domain.Driver, error)
}

// TimeRecordServicer defines the time record operations the handlers depend on.
type TimeRecordServicer interface {
	Create(ctx context.Context, rec domain.TimeRecord) (domain.TimeRecord, error)
	ListByDriverAndDate(ctx context.Context, driverID int64, date time.Time) ([]domain.TimeRecord, error)
}

// JourneyServicer defines the journey operations the handlers depend on.
type JourneyServicer interface {
	EvaluateDay(ctx context.Context, driverID int64, date time.Time, notes string) (service.DayEvaluation, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Journey, error)
	ListByDriver(ctx context.Context, driverID int64, p domain.PaginationParams) ([]domain.Journey, int64, error)
}

// AuditServicer defines the audit read operations the handlers depend on.
type AuditServicer interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ComplianceAudit, error)
	ListByJourney(ctx context.Context, journeyID uuid.UUID) ([]domain.ComplianceAudit, error)
}

// ReportServicer defines the report operation the handlers depend on.
type ReportServicer interface {
	BuildReport(ctx context.Context, driverID int64, start, end time.Time) (domain.ComplianceReport, error)
}

// Services groups the dependencies of Server. Any nil field leaves the
// corresponding routes unmounted.
type Services struct {
	Drivers     DriverServicer
	TimeRecords TimeRecordServicer
	Journeys    JourneyServicer
	Audits      AuditServicer
	Reports     ReportServicer
}

// Server holds the services every handler method operates on.
type Server struct {
	drivers  DriverServicer
	records  TimeRecordServicer
	journeys JourneyServicer
	audits   AuditServicer
	reports  ReportServicer
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(svcs Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		drivers:  svcs.Drivers,
		records:  svcs.TimeRecords,
		journeys: svcs.Journeys,
		audits:   svcs.Audits,
		reports:  svcs.Reports,
		logger:   logger,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}

// Routes returns a chi router serving every endpoint whose service is set.
// Cross-cutting middleware (request ID, logging, CORS) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)

	if s.drivers != nil {
		r.Post("/drivers", s.CreateDriver)
		r.Get("/drivers/{driverID}", s.GetDriver)
	}
	if s.records != nil {
		r.Post("/drivers/{driverID}/time-records", s.CreateTimeRecord)
		r.Get("/drivers/{driverID}/time-records", s.ListTimeRecords)
	}
	if s.journeys != nil {
		r.Post("/drivers/{driverID}/journeys/evaluate", s.EvaluateJourney)
		r.Get("/drivers/{driverID}/journeys", s.ListJourneys)
		r.Get("/journeys/{journeyID}", s.GetJourney)
	}
	if s.audits != nil {
		r.Get("/journeys/{journeyID}/audits", s.ListJourneyAudits)
		r.Get("/audits/{auditID}", s.GetAudit)
	}
	if s.reports != nil {
		r.Get("/reports/compliance", s.GetComplianceReport)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, notFoundBody("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method_not_allowed", "method not allowed"))
	})
	return r
}
