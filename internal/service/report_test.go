package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/repo"
	"github.com/pkordes/driver-compliance/backend/internal/service"
)

// ---- helpers ---------------------------------------------------------------

var (
	reportStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	reportEnd   = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	reportClock = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
)

func auditsWithStatuses(statuses ...domain.ComplianceStatus) []domain.ComplianceAudit {
	out := make([]domain.ComplianceAudit, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, domain.ComplianceAudit{ComplianceStatus: s, DriverID: 1})
	}
	return out
}

func newReportService(drivers repo.DriverRepo, audits repo.AuditRepo) *service.ReportService {
	return service.NewReportService(drivers, audits).WithClock(func() time.Time { return reportClock })
}

// ---- BuildReport -----------------------------------------------------------

func TestReportService_BuildReport_DriverCounts(t *testing.T) {
	audits := &mockAuditRepo{
		listByDriverAndDateRange: func(_ context.Context, driverID int64, from, to time.Time) ([]domain.ComplianceAudit, error) {
			assert.Equal(t, int64(1), driverID)
			assert.Equal(t, reportStart, from)
			assert.Equal(t, reportEnd.AddDate(0, 0, 1), to, "end day is inclusive")
			return auditsWithStatuses(domain.StatusCompliant, domain.StatusCompliant, domain.StatusNonCompliant, domain.StatusAlert), nil
		},
	}
	svc := newReportService(&mockDriverRepo{}, audits)

	got, err := svc.BuildReport(context.Background(), 1, reportStart, reportEnd)

	require.NoError(t, err)
	assert.Equal(t, "Driver Compliance Report", got.ReportName)
	assert.Equal(t, 4, got.TotalAudits)
	assert.Equal(t, 2, got.CompliantAudits)
	assert.Equal(t, 1, got.NonCompliantAudits)
	assert.InDelta(t, 50.0, got.ComplianceRate, 1e-9)
	assert.Equal(t, reportClock, got.GeneratedDate)
	assert.Equal(t, reportStart, got.StartDate)
	assert.Equal(t, reportEnd, got.EndDate)
	assert.Len(t, got.Audits, 4)
}

func TestReportService_BuildReport_FleetWide(t *testing.T) {
	audits := &mockAuditRepo{
		listByDateRange: func(_ context.Context, _, _ time.Time) ([]domain.ComplianceAudit, error) {
			return auditsWithStatuses(domain.StatusCompliant, domain.StatusAlert, domain.StatusAlert), nil
		},
	}
	svc := newReportService(&mockDriverRepo{}, audits)

	got, err := svc.BuildReport(context.Background(), 0, reportStart, reportEnd)

	require.NoError(t, err)
	assert.Equal(t, "Fleet Compliance Report", got.ReportName)
	assert.True(t, got.FleetWide())
	assert.Equal(t, 3, got.TotalAudits)
	assert.Equal(t, 1, got.CompliantAudits)
	assert.Equal(t, 0, got.NonCompliantAudits)
	assert.InDelta(t, 100.0/3, got.ComplianceRate, 1e-9)
}

func TestReportService_BuildReport_EmptyRangeRateIsZero(t *testing.T) {
	audits := &mockAuditRepo{
		listByDriverAndDateRange: func(_ context.Context, _ int64, _, _ time.Time) ([]domain.ComplianceAudit, error) {
			return nil, nil
		},
	}
	svc := newReportService(&mockDriverRepo{}, audits)

	got, err := svc.BuildReport(context.Background(), 1, reportStart, reportEnd)

	require.NoError(t, err)
	assert.Zero(t, got.TotalAudits)
	assert.Zero(t, got.ComplianceRate)
	assert.NotNil(t, got.Audits)
}

func TestReportService_BuildReport_SingleDay(t *testing.T) {
	audits := &mockAuditRepo{
		listByDriverAndDateRange: func(_ context.Context, _ int64, from, to time.Time) ([]domain.ComplianceAudit, error) {
			assert.Equal(t, 24*time.Hour, to.Sub(from))
			return auditsWithStatuses(domain.StatusNonCompliant), nil
		},
	}
	svc := newReportService(&mockDriverRepo{}, audits)

	got, err := svc.BuildReport(context.Background(), 1, reportStart.Add(13*time.Hour), reportStart)

	require.NoError(t, err)
	assert.Zero(t, got.ComplianceRate)
	assert.Equal(t, 1, got.NonCompliantAudits)
}

func TestReportService_BuildReport_RateBounds(t *testing.T) {
	mixes := [][]domain.ComplianceStatus{
		{domain.StatusCompliant},
		{domain.StatusNonCompliant},
		{domain.StatusAlert, domain.StatusCompliant},
		{domain.StatusCompliant, domain.StatusCompliant, domain.StatusCompliant},
	}
	for _, mix := range mixes {
		audits := &mockAuditRepo{
			listByDateRange: func(_ context.Context, _, _ time.Time) ([]domain.ComplianceAudit, error) {
				return auditsWithStatuses(mix...), nil
			},
		}
		got, err := newReportService(&mockDriverRepo{}, audits).BuildReport(context.Background(), 0, reportStart, reportEnd)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.ComplianceRate, 0.0)
		assert.LessOrEqual(t, got.ComplianceRate, 100.0)
		assert.LessOrEqual(t, got.CompliantAudits+got.NonCompliantAudits, got.TotalAudits)
	}
}

func TestReportService_BuildReport_InvalidRange(t *testing.T) {
	svc := newReportService(&mockDriverRepo{}, &mockAuditRepo{})

	_, err := svc.BuildReport(context.Background(), 1, reportEnd, reportStart)

	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_BuildReport_NegativeDriver(t *testing.T) {
	svc := newReportService(&mockDriverRepo{}, &mockAuditRepo{})

	_, err := svc.BuildReport(context.Background(), -1, reportStart, reportEnd)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReportService_BuildReport_DriverNotFound(t *testing.T) {
	audits := &mockAuditRepo{
		listByDriverAndDateRange: func(_ context.Context, _ int64, _, _ time.Time) ([]domain.ComplianceAudit, error) {
			return nil, nil
		},
	}
	svc := newReportService(missingDriver(), audits)

	_, err := svc.BuildReport(context.Background(), 9, reportStart, reportEnd)

	assert.ErrorIs(t, err, domain.ErrDriverNotFound)
}

func TestReportService_BuildReport_RepoError(t *testing.T) {
	dbErr := errors.New("connection reset")
	audits := &mockAuditRepo{
		listByDateRange: func(_ context.Context, _, _ time.Time) ([]domain.ComplianceAudit, error) {
			return nil, dbErr
		},
	}
	svc := newReportService(&mockDriverRepo{}, audits)

	_, err := svc.BuildReport(context.Background(), 0, reportStart, reportEnd)

	assert.ErrorIs(t, err, dbErr)
}
