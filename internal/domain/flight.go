package domain

import (
	"strings"
	"time"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusInFlight  FlightStatus = "IN_FLIGHT"
	FlightStatusLanded    FlightStatus = "LANDED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
)

// Sticky statuses are only changed by an administrator.
func (s FlightStatus) Sticky() bool {
	return s == FlightStatusCancelled || s == FlightStatusDelayed
}

// ParseFlightStatus accepts any casing of a known status name.
func ParseFlightStatus(raw string) (FlightStatus, bool) {
	switch s := FlightStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case FlightStatusScheduled, FlightStatusInFlight, FlightStatusLanded, FlightStatusCancelled, FlightStatusDelayed:
		return s, true
	}
	return "", false
}

type Flight struct {
	ID                   int64         `json:"id"`
	AircraftID           int64         `json:"aircraft_id"`
	OriginAirportID      int64         `json:"origin_airport_id"`
	OriginIATA           string        `json:"origin"`
	DestinationAirportID int64         `json:"destination_airport_id"`
	DestinationIATA      string        `json:"destination"`
	DepartureTime        time.Time     `json:"departure_time"`
	ArrivalTime          time.Time     `json:"arrival_time"`
	Duration             time.Duration `json:"duration"`
	Status               FlightStatus  `json:"status"`
	BasePriceCents       int64         `json:"base_price_cents"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// StatusAt derives the schedule status for the given instant. Sticky
// statuses are returned unchanged.
func (f Flight) StatusAt(now time.Time) FlightStatus {
	if f.Status.Sticky() {
		return f.Status
	}
	switch {
	case now.Before(f.DepartureTime):
		return FlightStatusScheduled
	case now.After(f.ArrivalTime):
		return FlightStatusLanded
	default:
		return FlightStatusInFlight
	}
}
