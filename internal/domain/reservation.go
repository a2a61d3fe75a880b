package domain

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// ParseReservationStatus accepts any casing of a known status name.
func ParseReservationStatus(raw string) (ReservationStatus, bool) {
	switch s := ReservationStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled:
		return s, true
	}
	return "", false
}

type Reservation struct {
	ID          int64             `json:"id"`
	PassengerID int64             `json:"passenger_id"`
	FlightID    int64             `json:"flight_id"`
	SeatID      int64             `json:"seat_id"`
	Status      ReservationStatus `json:"status"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type TicketStatus string

const (
	TicketStatusIssued TicketStatus = "ISSUED"
	TicketStatusVoided TicketStatus = "VOIDED"
)

type Ticket struct {
	ID            int64        `json:"id"`
	ReservationID int64        `json:"reservation_id"`
	Code          string       `json:"code"`
	Status        TicketStatus `json:"status"`
	IssuedAt      time.Time    `json:"issued_at"`
	VoidedAt      *time.Time   `json:"voided_at,omitempty"`
}
