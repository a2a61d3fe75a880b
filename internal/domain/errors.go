package domain

import "errors"

var (
	ErrNotFound                  = errors.New("not found")
	ErrForbidden                 = errors.New("forbidden")
	ErrValidation                = errors.New("validation failed")
	ErrSeatAircraftMismatch      = errors.New("seat does not belong to the flight's aircraft")
	ErrDuplicatePassengerBooking = errors.New("passenger already has an active reservation on this flight")
	ErrSeatAlreadyReserved       = errors.New("seat already reserved on this flight")
	ErrInvalidTransition         = errors.New("invalid reservation state transition")
	ErrInvalidStatus             = errors.New("unsupported target status")
	ErrDuplicateTicket           = errors.New("ticket already issued for reservation")
	ErrFlightCancelled           = errors.New("flight is cancelled")
	ErrSeatsInUse                = errors.New("aircraft seats are referenced by reservations")
	ErrPassengerExists           = errors.New("passenger with this passport already registered")
	ErrAirportExists             = errors.New("airport with this IATA code already exists")

	// ErrConflict is returned when a transaction keeps failing on datastore
	// contention after the configured number of attempts.
	ErrConflict = errors.New("conflicting concurrent update, retry later")
)
