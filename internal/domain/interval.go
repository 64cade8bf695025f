package domain

import "time"

// ActivityKind classifies a reconstructed interval.
type ActivityKind string

const (
	ActivityDriving ActivityKind = "driving"
	ActivityResting ActivityKind = "resting"
	ActivityMeal    ActivityKind = "meal"
	ActivityWaiting ActivityKind = "waiting"
	// ActivityUnknown marks an end event that matched no open interval.
	// Such intervals always have zero duration.
	ActivityUnknown ActivityKind = "unknown"
)

// Interval is a contiguous span of a single activity derived from time records.
// Intervals are computed on every evaluation and never stored.
type Interval struct {
	Kind  ActivityKind
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Minutes returns the duration in whole minutes, truncated.
func (i Interval) Minutes() int {
	return int(i.Duration() / time.Minute)
}

// Anomaly is a non-fatal irregularity found while reconstructing intervals,
// such as an end event with no matching start.
type Anomaly struct {
	At        time.Time
	EventType EventType
	Message   string
}
