package compliance

import "github.com/pkordes/driver-compliance/backend/internal/domain"

// Regulatory thresholds on a driver-day basis, in minutes.
const (
	BaseDrivingLimitMinutes     = 480 // 8h regular
	ExtendedDrivingLimitMinutes = 600 // 8h + 2h overtime
	MinimumRestMinutes          = 660 // 11h
)

// Violation descriptions stored on audits.
const (
	RuleDailyLimitExceeded   = "daily driving limit exceeded (including extension)"
	RuleExtendedDriving      = "extended driving beyond 8h regular limit"
	RuleInsufficientRest     = "insufficient daily rest"
	RuleRestCompoundsDriving = "insufficient daily rest compounding driving violation"
)

// Verdict is the classification of one driver-day.
type Verdict struct {
	Status       domain.ComplianceStatus
	ViolatedRule string // empty when compliant
	// DailyLimitExceeded is set only by the extended-limit rule and is not
	// affected by a later rest escalation.
	DailyLimitExceeded bool
}

// Rule returns the violated rule, or nil when there is none.
func (v Verdict) Rule() *string {
	if v.ViolatedRule == "" {
		return nil
	}
	rule := v.ViolatedRule
	return &rule
}

// Evaluate classifies a driver-day from its driving and rest totals.
// Negative totals are treated as zero. A rest violation on top of a driving
// violation always escalates to NON_COMPLIANT.
func Evaluate(drivingMinutes, restMinutes int) Verdict {
	drivingMinutes = max(drivingMinutes, 0)
	restMinutes = max(restMinutes, 0)

	v := Verdict{Status: domain.StatusCompliant}

	switch {
	case drivingMinutes > ExtendedDrivingLimitMinutes:
		v = Verdict{Status: domain.StatusNonCompliant, ViolatedRule: RuleDailyLimitExceeded, DailyLimitExceeded: true}
	case drivingMinutes > BaseDrivingLimitMinutes:
		v = Verdict{Status: domain.StatusAlert, ViolatedRule: RuleExtendedDriving}
	}

	if restMinutes < MinimumRestMinutes {
		if v.Status == domain.StatusCompliant {
			v.Status = domain.StatusAlert
			v.ViolatedRule = RuleInsufficientRest
		} else {
			v.Status = domain.StatusNonCompliant
			v.ViolatedRule = RuleRestCompoundsDriving
		}
	}

	return v
}

// Severity orders statuses from least to most severe. PENDING ranks lowest.
func Severity(s domain.ComplianceStatus) int {
	switch s {
	case domain.StatusCompliant:
		return 1
	case domain.StatusAlert:
		return 2
	case domain.StatusNonCompliant:
		return 3
	}
	return 0
}
