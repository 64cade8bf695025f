// Package compliance is the pure core of the journey compliance engine.
// It turns an ordered stream of driver events into activity intervals and
// classifies a driver-day against the fixed regulatory thresholds.
// Nothing in this package performs I/O.
package compliance

import (
	"fmt"
	"time"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// Reconstruction is the result of Reconstruct: the ordered, non-overlapping
// intervals plus any anomalies tolerated along the way.
type Reconstruction struct {
	Intervals []domain.Interval
	Anomalies []domain.Anomaly
}

// Reconstruct converts time records into activity intervals.
//
// Records must be strictly ascending by EventTimestamp; otherwise
// domain.ErrUnorderedEvents is returned and no intervals are produced.
// Malformed pairing (an end with no matching start) never fails: it yields a
// zero-length ActivityUnknown interval and an Anomaly.
//
// A start event implicitly closes whatever interval is open. Inside a journey
// (between journey-start and journey-end) the end of a rest or meal break
// resumes driving, so a well-paired day tiles the span from first to last
// event exactly. Whatever is still open at the end is closed at the last
// event's timestamp.
func Reconstruct(events []domain.TimeRecord) (Reconstruction, error) {
	for i := 1; i < len(events); i++ {
		if !events[i].EventTimestamp.After(events[i-1].EventTimestamp) {
			return Reconstruction{}, fmt.Errorf("compliance.Reconstruct: record %d (%s) at %s: %w",
				i, events[i].EventType, events[i].EventTimestamp.Format(time.RFC3339), domain.ErrUnorderedEvents)
		}
	}

	var r reconstructor
	for _, e := range events {
		r.apply(e)
	}
	if len(events) > 0 {
		r.finish(events[len(events)-1].EventTimestamp)
	}
	return r.out, nil
}

// reconstructor holds the state machine. open is the single in-progress
// activity; pendingWait is a lone wait seen while nothing was open, kept
// until we know whether the next event pairs with it.
type reconstructor struct {
	open        *domain.Interval
	inJourney   bool
	pendingWait *time.Time
	out         Reconstruction
}

func (r *reconstructor) apply(e domain.TimeRecord) {
	ts := e.EventTimestamp

	if e.EventType == domain.EventWait {
		r.wait(ts)
		return
	}
	r.flushWait()

	switch e.EventType {
	case domain.EventJourneyStart:
		r.inJourney = true
		r.openAt(domain.ActivityDriving, ts)
	case domain.EventRestStart:
		r.openAt(domain.ActivityResting, ts)
	case domain.EventMealStart:
		r.openAt(domain.ActivityMeal, ts)
	case domain.EventJourneyEnd:
		// Waiting is a sub-state of the journey, so journey-end closes it too.
		r.closeMatching(e, domain.ActivityDriving, domain.ActivityWaiting)
		r.inJourney = false
	case domain.EventRestEnd:
		if r.closeMatching(e, domain.ActivityResting) {
			r.resumeDriving(ts)
		}
	case domain.EventMealEnd:
		if r.closeMatching(e, domain.ActivityMeal) {
			r.resumeDriving(ts)
		}
	case domain.EventMovement:
		if r.open == nil {
			r.emit(domain.ActivityWaiting, ts, ts)
		}
	default:
		r.mismatch(e, "unrecognised event type")
	}
}

// wait toggles between driving and waiting inside a journey and pairs lone
// waits outside one. A wait during a rest or meal break is informational.
func (r *reconstructor) wait(ts time.Time) {
	if r.pendingWait != nil {
		r.emit(domain.ActivityWaiting, *r.pendingWait, ts)
		r.pendingWait = nil
		return
	}
	if r.open == nil {
		r.pendingWait = &ts
		return
	}
	switch r.open.Kind {
	case domain.ActivityDriving:
		r.openAt(domain.ActivityWaiting, ts)
	case domain.ActivityWaiting:
		r.closeOpen(ts)
		r.resumeDriving(ts)
	}
}

// flushWait emits an unpaired wait as a zero-length waiting interval.
func (r *reconstructor) flushWait() {
	if r.pendingWait == nil {
		return
	}
	r.emit(domain.ActivityWaiting, *r.pendingWait, *r.pendingWait)
	r.pendingWait = nil
}

// openAt closes the open interval (if any) at ts and opens a new one of kind.
func (r *reconstructor) openAt(kind domain.ActivityKind, ts time.Time) {
	r.closeOpen(ts)
	r.open = &domain.Interval{Kind: kind, Start: ts}
}

func (r *reconstructor) closeOpen(ts time.Time) {
	if r.open == nil {
		return
	}
	r.emit(r.open.Kind, r.open.Start, ts)
	r.open = nil
}

func (r *reconstructor) resumeDriving(ts time.Time) {
	if r.inJourney && r.open == nil {
		r.open = &domain.Interval{Kind: domain.ActivityDriving, Start: ts}
	}
}

// closeMatching closes the open interval if its kind is one of kinds and
// reports whether it did. Otherwise the event is recorded as a mismatch.
func (r *reconstructor) closeMatching(e domain.TimeRecord, kinds ...domain.ActivityKind) bool {
	if r.open != nil {
		for _, k := range kinds {
			if r.open.Kind == k {
				r.closeOpen(e.EventTimestamp)
				return true
			}
		}
	}
	msg := "end event with no open interval"
	if r.open != nil {
		msg = fmt.Sprintf("end event does not match open %s interval", r.open.Kind)
	}
	r.mismatch(e, msg)
	return false
}

// mismatch records a zero-length unknown interval at the event. An open
// interval is split around it so emitted intervals stay ordered and disjoint.
func (r *reconstructor) mismatch(e domain.TimeRecord, msg string) {
	ts := e.EventTimestamp
	var reopen domain.ActivityKind
	if r.open != nil {
		reopen = r.open.Kind
		r.closeOpen(ts)
	}
	r.emit(domain.ActivityUnknown, ts, ts)
	r.out.Anomalies = append(r.out.Anomalies, domain.Anomaly{At: ts, EventType: e.EventType, Message: msg})
	if reopen != "" {
		r.open = &domain.Interval{Kind: reopen, Start: ts}
	}
}

func (r *reconstructor) finish(last time.Time) {
	r.flushWait()
	r.closeOpen(last)
}

func (r *reconstructor) emit(kind domain.ActivityKind, start, end time.Time) {
	r.out.Intervals = append(r.out.Intervals, domain.Interval{Kind: kind, Start: start, End: end})
}

// Totals sums driving and resting time across intervals, in whole minutes.
// Durations are summed before truncation so seconds are not lost per interval.
func Totals(intervals []domain.Interval) (drivingMinutes, restMinutes int) {
	var driving, rest time.Duration
	for _, iv := range intervals {
		switch iv.Kind {
		case domain.ActivityDriving:
			driving += iv.Duration()
		case domain.ActivityResting:
			rest += iv.Duration()
		}
	}
	return int(driving / time.Minute), int(rest / time.Minute)
}

// Span returns the time between the first and last record, or zero.
func Span(events []domain.TimeRecord) time.Duration {
	if len(events) < 2 {
		return 0
	}
	return events[len(events)-1].EventTimestamp.Sub(events[0].EventTimestamp)
}
