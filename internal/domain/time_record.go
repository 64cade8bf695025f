package domain

import "time"

// EventType is the kind of a raw driver event.
type EventType string

const (
	EventJourneyStart EventType = "journey-start"
	EventJourneyEnd   EventType = "journey-end"
	EventRestStart    EventType = "rest-start"
	EventRestEnd      EventType = "rest-end"
	EventMealStart    EventType = "meal-start"
	EventMealEnd      EventType = "meal-end"
	EventWait         EventType = "wait"
	EventMovement     EventType = "movement"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventJourneyStart, EventJourneyEnd,
		EventRestStart, EventRestEnd,
		EventMealStart, EventMealEnd,
		EventWait, EventMovement:
		return true
	}
	return false
}

// TimeRecord is a single timestamped driver event as captured by the
// on-board terminal. Records are immutable once stored.
type TimeRecord struct {
	ID             int64
	DriverID       int64
	VehicleID      int64
	EventTimestamp time.Time
	EventType      EventType
	Location       string
	CreatedAt      time.Time
}
