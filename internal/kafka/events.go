package kafka

import "time"

const (
	EventReservationCreated   = "reservation_created"
	EventReservationReseated  = "reservation_reseated"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventTicketIssued         = "ticket_issued"
	EventTicketVoided         = "ticket_voided"
)

// ReservationEvent is published on every committed ledger change.
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	PassengerID   int64     `json:"passenger_id"`
	FlightID      int64     `json:"flight_id"`
	SeatID        int64     `json:"seat_id"`
	Status        string    `json:"status"`
	Active        bool      `json:"active"`
	TicketCode    string    `json:"ticket_code,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TicketNotification asks the notification worker to e-mail a ticket.
type TicketNotification struct {
	ReservationID int64     `json:"reservation_id"`
	FlightID      int64     `json:"flight_id"`
	PassengerName string    `json:"passenger_name"`
	Email         string    `json:"email"`
	TicketCode    string    `json:"ticket_code"`
	IssuedAt      time.Time `json:"issued_at"`
}
