package handler_test

import (
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/handler"
)

// mockReportServicer is a test double for handler.ReportServicer.
type mockReportServicer struct {
	buildReport func(ctx context.Context, driverID int64, start, end time.Time) (domain.ComplianceReport, error)
}

func (m *mockReportServicer) BuildReport(ctx context.Context, driverID int64, start, end time.Time) (domain.ComplianceReport, error) {
	return m.buildReport(ctx, driverID, start, end)
}

// compile-time check: mockReportServicer must satisfy handler.ReportServicer.
var _ handler.ReportServicer = (*mockReportServicer)(nil)

var (
	reportStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	reportEnd   = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
)

func reportFixture(driverID int64) domain.ComplianceReport {
	rule := "daily driving limit exceeded (including extension)"
	journeyID := uuid.New()
	nc := auditFixture(journeyID, domain.StatusNonCompliant)
	nc.ViolatedRule = &rule
	return domain.ComplianceReport{
		ReportName:         "Driver Compliance Report",
		GeneratedDate:      time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		DriverID:           driverID,
		StartDate:          reportStart,
		EndDate:            reportEnd,
		TotalAudits:        2,
		CompliantAudits:    1,
		NonCompliantAudits: 1,
		ComplianceRate:     50,
		Audits:             []domain.ComplianceAudit{auditFixture(journeyID, domain.StatusCompliant), nc},
	}
}

func TestGetComplianceReport_JSON(t *testing.T) {
	var gotDriver int64
	var gotStart, gotEnd time.Time
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{
		buildReport: func(_ context.Context, driverID int64, start, end time.Time) (domain.ComplianceReport, error) {
			gotDriver, gotStart, gotEnd = driverID, start, end
			return reportFixture(driverID), nil
		},
	}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?driver_id=3&start=2025-03-01&end=2025-03-31", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), gotDriver)
	assert.Equal(t, reportStart, gotStart)
	assert.Equal(t, reportEnd, gotEnd)

	body := decode[handler.ComplianceReport](t, rec)
	assert.Equal(t, "Driver Compliance Report", body.ReportName)
	require.NotNil(t, body.DriverId)
	assert.Equal(t, int64(3), *body.DriverId)
	assert.Equal(t, 2, body.TotalAudits)
	assert.InDelta(t, 50.0, body.ComplianceRate, 1e-9)
	assert.Equal(t, "2025-03-31", body.EndDate.String())
	assert.Len(t, body.Audits, 2)
}

func TestGetComplianceReport_FleetWideWhenDriverOmitted(t *testing.T) {
	var gotDriver int64 = -1
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{
		buildReport: func(_ context.Context, driverID int64, _, _ time.Time) (domain.ComplianceReport, error) {
			gotDriver = driverID
			r := reportFixture(0)
			r.ReportName = "Fleet Compliance Report"
			return r, nil
		},
	}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?start=2025-03-01&end=2025-03-31", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, gotDriver)
	body := decode[handler.ComplianceReport](t, rec)
	assert.Nil(t, body.DriverId)
	assert.Equal(t, "Fleet Compliance Report", body.ReportName)
}

func TestGetComplianceReport_CSV(t *testing.T) {
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{
		buildReport: func(_ context.Context, driverID int64, _, _ time.Time) (domain.ComplianceReport, error) {
			return reportFixture(driverID), nil
		},
	}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?driver_id=3&start=2025-03-01&end=2025-03-31&format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "compliance-2025-03-01-2025-03-31.csv")
	assert.Equal(t, "2", rec.Header().Get("X-Report-Total-Audits"))
	assert.Equal(t, "50.00", rec.Header().Get("X-Report-Compliance-Rate"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus one row per audit")
	assert.Equal(t, "audit_id", records[0][0])
	assert.Equal(t, "COMPLIANT", records[1][4])
	assert.Equal(t, "", records[1][5], "nil rule is an empty cell")
	assert.Equal(t, "NON_COMPLIANT", records[2][4])
	assert.Equal(t, "daily driving limit exceeded (including extension)", records[2][5])
	assert.Equal(t, "2025-03-11T09:00:00Z", records[2][3])
}

func TestGetComplianceReport_BadFormat_Returns400(t *testing.T) {
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?start=2025-03-01&end=2025-03-31&format=xml", nil)

	requireErrorCode(t, rec, http.StatusBadRequest, "invalid_parameter")
}

func TestGetComplianceReport_MissingStart_Returns400(t *testing.T) {
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?end=2025-03-31", nil)

	requireErrorCode(t, rec, http.StatusBadRequest, "invalid_parameter")
}

func TestGetComplianceReport_InvalidRange_Returns422(t *testing.T) {
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{
		buildReport: func(_ context.Context, _ int64, _, _ time.Time) (domain.ComplianceReport, error) {
			return domain.ComplianceReport{}, domain.ErrInvalidDateRange
		},
	}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?start=2025-03-31&end=2025-03-01", nil)

	body := requireErrorCode(t, rec, http.StatusUnprocessableEntity, "validation_error")
	assert.Equal(t, "start date must not be after end date", body.Error.Message)
}

func TestGetComplianceReport_DriverNotFound_Returns404(t *testing.T) {
	h := newHTTPHandler(handler.Services{Reports: &mockReportServicer{
		buildReport: func(_ context.Context, _ int64, _, _ time.Time) (domain.ComplianceReport, error) {
			return domain.ComplianceReport{}, domain.ErrDriverNotFound
		},
	}})

	rec := do(t, h, http.MethodGet, "/reports/compliance?driver_id=99&start=2025-03-01&end=2025-03-31", nil)

	requireErrorCode(t, rec, http.StatusNotFound, "not_found")
}
