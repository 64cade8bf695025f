package domain

import "time"

// ComplianceReport summarises audits over a date range for one driver, or for
// the whole fleet when DriverID is 0. Reports are built on demand and never stored.
type ComplianceReport struct {
	ReportName         string
	GeneratedDate      time.Time
	DriverID           int64
	StartDate          time.Time
	EndDate            time.Time
	TotalAudits        int
	CompliantAudits    int
	NonCompliantAudits int
	// ComplianceRate is CompliantAudits / TotalAudits * 100, or 0 when there
	// are no audits. ALERT audits count toward the total only.
	ComplianceRate float64
	Audits         []ComplianceAudit
}

// FleetWide reports whether the report covers every driver.
func (r ComplianceReport) FleetWide() bool {
	return r.DriverID == 0
}
