// report.go implements GET /reports/compliance.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).

package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// csvHeaders defines the column names written as the first row of a CSV report.
var csvHeaders = []string{
	"audit_id", "journey_id", "driver_id", "audit_date",
	"compliance_status", "violated_rule", "notes",
}

// GetComplianceReport handles GET /reports/compliance.
// Query: driver_id (optional, omitted or 0 = whole fleet), start and end
// (required, inclusive calendar dates), format (json|csv, default json).
func (s *Server) GetComplianceReport(w http.ResponseWriter, r *http.Request) {
	var (
		driverID   *int64
		start, end openapi_types.Date
		format     *string
	)
	for _, p := range []struct {
		name     string
		required bool
		dest     any
	}{
		{"driver_id", false, &driverID},
		{"start", true, &start},
		{"end", true, &end},
		{"format", false, &format},
	} {
		if err := queryParam(r, p.name, p.required, p.dest); err != nil {
			writeJSON(w, http.StatusBadRequest, paramBody(err))
			return
		}
	}

	wantFormat := formatJSON
	if format != nil {
		wantFormat = *format
	}
	if wantFormat != formatJSON && wantFormat != formatCSV {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid_parameter", fmt.Sprintf("format must be %q or %q", formatJSON, formatCSV)))
		return
	}

	var id int64
	if driverID != nil {
		id = *driverID
	}
	report, err := s.reports.BuildReport(r.Context(), id, start.Time, end.Time)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}

	if wantFormat == formatCSV {
		writeCSVReport(w, report)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(report))
}

func reportToResponse(rep domain.ComplianceReport) ComplianceReport {
	out := ComplianceReport{
		ReportName:         rep.ReportName,
		GeneratedDate:      rep.GeneratedDate,
		StartDate:          toDate(rep.StartDate),
		EndDate:            toDate(rep.EndDate),
		TotalAudits:        rep.TotalAudits,
		CompliantAudits:    rep.CompliantAudits,
		NonCompliantAudits: rep.NonCompliantAudits,
		ComplianceRate:     rep.ComplianceRate,
		Audits:             auditsToResponse(rep.Audits),
	}
	if !rep.FleetWide() {
		id := rep.DriverID
		out.DriverId = &id
	}
	return out
}

// writeCSVReport encodes the report's audits as CSV, one row per audit.
// Summary figures travel in X-Report-* headers so the body stays a plain table.
func writeCSVReport(w http.ResponseWriter, rep domain.ComplianceReport) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, a := range rep.Audits {
		//nolint:errcheck
		cw.Write(auditToCSVRecord(a))
	}
	cw.Flush()

	filename := fmt.Sprintf("compliance-%s-%s.csv",
		rep.StartDate.Format(time.DateOnly), rep.EndDate.Format(time.DateOnly))

	h := w.Header()
	h.Set("Content-Type", "text/csv")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("X-Report-Total-Audits", strconv.Itoa(rep.TotalAudits))
	h.Set("X-Report-Compliance-Rate", strconv.FormatFloat(rep.ComplianceRate, 'f', 2, 64))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// auditToCSVRecord encodes a domain.ComplianceAudit as a flat string slice.
// A nil violated rule is encoded as an empty string.
func auditToCSVRecord(a domain.ComplianceAudit) []string {
	var rule string
	if a.ViolatedRule != nil {
		rule = *a.ViolatedRule
	}
	return []string{
		a.ID.String(),
		a.JourneyID.String(),
		strconv.FormatInt(a.DriverID, 10),
		a.AuditDate.UTC().Format(time.RFC3339),
		string(a.ComplianceStatus),
		rule,
		a.Notes,
	}
}
