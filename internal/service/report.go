package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/metrics"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
)

const (
	fleetReportName  = "Fleet Compliance Report"
	driverReportName = "Driver Compliance Report"
)

// ReportService summarises compliance audits over a date range.
// Reports are computed on demand and never stored.
type ReportService struct {
	drivers repo.DriverRepo
	audits  repo.AuditRepo
	now     func() time.Time
}

// NewReportService constructs a ReportService backed by the provided repos.
func NewReportService(drivers repo.DriverRepo, audits repo.AuditRepo) *ReportService {
	return &ReportService{drivers: drivers, audits: audits, now: time.Now}
}

// WithClock replaces the time source used for GeneratedDate. Intended for tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// BuildReport summarises audits dated within [start, end], both calendar days
// inclusive. driverID 0 reports on the whole fleet; any other value restricts
// the report to that driver's journeys.
//
// Returns domain.ErrInvalidDateRange when start is after end, domain.ErrValidation
// for a negative driverID, and domain.ErrDriverNotFound for an unknown driver.
func (s *ReportService) BuildReport(ctx context.Context, driverID int64, start, end time.Time) (domain.ComplianceReport, error) {
	start, end = domain.DateOf(start), domain.DateOf(end)
	if start.After(end) {
		return domain.ComplianceReport{}, domain.ErrInvalidDateRange
	}
	if driverID < 0 {
		return domain.ComplianceReport{}, fmt.Errorf("%w: driver_id must not be negative", domain.ErrValidation)
	}

	// Audit dates are timestamps, so the inclusive end day becomes an
	// exclusive bound at the following midnight.
	from, to := start, end.AddDate(0, 0, 1)

	var audits []domain.ComplianceAudit
	if driverID == 0 {
		var err error
		audits, err = s.audits.ListByDateRange(ctx, from, to)
		if err != nil {
			return domain.ComplianceReport{}, fmt.Errorf("service.ReportService.BuildReport: %w", err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return requireDriver(gctx, s.drivers, driverID)
		})
		g.Go(func() error {
			var err error
			audits, err = s.audits.ListByDriverAndDateRange(gctx, driverID, from, to)
			return err
		})
		if err := g.Wait(); err != nil {
			return domain.ComplianceReport{}, fmt.Errorf("service.ReportService.BuildReport: %w", err)
		}
	}
	if audits == nil {
		audits = []domain.ComplianceAudit{}
	}

	report := summarise(audits)
	report.DriverID = driverID
	report.StartDate = start
	report.EndDate = end
	report.GeneratedDate = s.now().UTC()
	report.ReportName = driverReportName
	if report.FleetWide() {
		report.ReportName = fleetReportName
	}

	metrics.ObserveReport(report.FleetWide())
	return report, nil
}

// summarise counts audits by status. ALERT audits count toward the total only.
func summarise(audits []domain.ComplianceAudit) domain.ComplianceReport {
	r := domain.ComplianceReport{Audits: audits, TotalAudits: len(audits)}
	for _, a := range audits {
		switch a.ComplianceStatus {
		case domain.StatusCompliant:
			r.CompliantAudits++
		case domain.StatusNonCompliant:
			r.NonCompliantAudits++
		}
	}
	if r.TotalAudits > 0 {
		r.ComplianceRate = float64(r.CompliantAudits) / float64(r.TotalAudits) * 100
	}
	return r
}
