package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/kafka"
	"github.com/Domenick1991/airticketing/internal/repository"
)

type ReservationUseCase interface {
	Book(ctx context.Context, actor domain.Actor, input BookInput) (*domain.Reservation, error)
	Reseat(ctx context.Context, actor domain.Actor, reservationID, seatID int64) (*domain.Reservation, error)
	Confirm(ctx context.Context, actor domain.Actor, reservationID int64) (*ConfirmResult, error)
	Cancel(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error)
	SetStatus(ctx context.Context, actor domain.Actor, reservationID int64, raw string) (*ConfirmResult, error)
	Get(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error)
}

// TicketIssuer issues and voids tickets inside a ledger transaction.
type TicketIssuer interface {
	IssueInTx(ctx context.Context, tx repository.LedgerTx, reservation *domain.Reservation) (*domain.Ticket, error)
	VoidInTx(ctx context.Context, tx repository.LedgerTx, ticket *domain.Ticket) (*domain.Ticket, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookInput struct {
	PassengerID int64 `json:"passenger_id"`
	FlightID    int64 `json:"flight_id"`
	SeatID      int64 `json:"seat_id"`
}

// ConfirmResult carries the outcome of a confirmation. Warning is set when
// the reservation was confirmed but the ticket notification could not be
// handed off.
type ConfirmResult struct {
	Reservation      *domain.Reservation `json:"reservation"`
	Ticket           *domain.Ticket      `json:"ticket,omitempty"`
	AlreadyConfirmed bool                `json:"already_confirmed"`
	Warning          string              `json:"warning,omitempty"`
}

type Option func(*ReservationService)

func WithNotificationsTopic(topic string) Option {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) {
		s.now = now
	}
}

type ReservationService struct {
	ledger             repository.Ledger
	reservations       repository.ReservationRepository
	tickets            TicketIssuer
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	now                func() time.Time
	log                *slog.Logger
}

func NewReservationService(
	ledger repository.Ledger,
	reservations repository.ReservationRepository,
	tickets TicketIssuer,
	producer Producer,
	eventsTopic string,
	logger *slog.Logger,
	opts ...Option,
) *ReservationService {
	s := &ReservationService{
		ledger:       ledger,
		reservations: reservations,
		tickets:      tickets,
		producer:     producer,
		eventsTopic:  eventsTopic,
		now:          time.Now,
		log:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book creates a pending reservation. Seat and passenger conflicts are
// decided by the datastore when the row is inserted.
func (s *ReservationService) Book(ctx context.Context, actor domain.Actor, input BookInput) (*domain.Reservation, error) {
	var reservation *domain.Reservation
	err := s.ledger.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		passenger, err := tx.PassengerByID(ctx, input.PassengerID)
		if err != nil {
			return err
		}
		flight, err := tx.FlightByID(ctx, input.FlightID)
		if err != nil {
			return err
		}
		seat, err := tx.SeatByID(ctx, input.SeatID)
		if err != nil {
			return err
		}

		if !actor.Owns(passenger.UserID) {
			return domain.ErrForbidden
		}
		if seat.AircraftID != flight.AircraftID {
			return fmt.Errorf("%w: seat %s", domain.ErrSeatAircraftMismatch, seat.Number)
		}
		if flight.Status == domain.FlightStatusCancelled {
			return fmt.Errorf("%w: flight %d", domain.ErrFlightCancelled, flight.ID)
		}

		reservation = &domain.Reservation{
			PassengerID: passenger.ID,
			FlightID:    flight.ID,
			SeatID:      seat.ID,
			Status:      domain.ReservationStatusPending,
			Active:      true,
		}
		return tx.InsertReservation(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation created", "reservation_id", reservation.ID, "flight_id", reservation.FlightID, "seat_id", reservation.SeatID)
	s.publish(ctx, kafka.EventReservationCreated, reservation, "")
	return reservation, nil
}

// lockOwned locks the reservation row and checks that the actor may act on it.
func (s *ReservationService) lockOwned(ctx context.Context, tx repository.LedgerTx, actor domain.Actor, id int64) (*domain.Reservation, *domain.Passenger, error) {
	reservation, err := tx.ReservationForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	passenger, err := tx.PassengerByID(ctx, reservation.PassengerID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Owns(passenger.UserID) {
		return nil, nil, domain.ErrForbidden
	}
	return reservation, passenger, nil
}

// Reseat moves an active reservation to another seat with a single update,
// so the old seat stays held until the new one is secured.
func (s *ReservationService) Reseat(ctx context.Context, actor domain.Actor, reservationID, seatID int64) (*domain.Reservation, error) {
	var (
		reservation *domain.Reservation
		changed     bool
	)
	err := s.ledger.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		current, _, err := s.lockOwned(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}
		if !current.Active {
			return fmt.Errorf("%w: reservation %d is %s", domain.ErrInvalidTransition, current.ID, current.Status)
		}

		flight, err := tx.FlightByID(ctx, current.FlightID)
		if err != nil {
			return err
		}
		seat, err := tx.SeatByID(ctx, seatID)
		if err != nil {
			return err
		}
		if seat.AircraftID != flight.AircraftID {
			return fmt.Errorf("%w: seat %s", domain.ErrSeatAircraftMismatch, seat.Number)
		}
		if current.SeatID == seat.ID {
			reservation = current
			return nil
		}

		reservation, err = tx.UpdateReservationSeat(ctx, current.ID, seat.ID)
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("reservation reseated", "reservation_id", reservation.ID, "seat_id", reservation.SeatID)
		s.publish(ctx, kafka.EventReservationReseated, reservation, "")
	}
	return reservation, nil
}

// Confirm moves a pending reservation to CONFIRMED and issues its ticket in
// the same transaction. Confirming a confirmed reservation returns the
// existing ticket with AlreadyConfirmed set.
func (s *ReservationService) Confirm(ctx context.Context, actor domain.Actor, reservationID int64) (*ConfirmResult, error) {
	result := &ConfirmResult{}
	var passenger *domain.Passenger
	err := s.ledger.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		*result = ConfirmResult{}
		current, p, err := s.lockOwned(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}
		passenger = p

		switch current.Status {
		case domain.ReservationStatusCancelled:
			return fmt.Errorf("%w: reservation %d is cancelled", domain.ErrInvalidTransition, current.ID)
		case domain.ReservationStatusConfirmed:
			result.AlreadyConfirmed = true
			result.Reservation = current
			ticket, err := tx.TicketByReservation(ctx, current.ID)
			if err == nil {
				result.Ticket = ticket
				return nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			// Confirmed without a ticket; issue the missing one.
			result.Ticket, err = s.tickets.IssueInTx(ctx, tx, current)
			return err
		}

		confirmed, err := tx.UpdateReservationStatus(ctx, current.ID, domain.ReservationStatusConfirmed, true)
		if err != nil {
			return err
		}
		ticket, err := s.tickets.IssueInTx(ctx, tx, confirmed)
		if err != nil {
			return err
		}
		result.Reservation = confirmed
		result.Ticket = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyConfirmed {
		return result, nil
	}

	s.log.Info("reservation confirmed", "reservation_id", result.Reservation.ID, "ticket_code", result.Ticket.Code)
	s.publish(ctx, kafka.EventReservationConfirmed, result.Reservation, result.Ticket.Code)
	if warning := s.notify(ctx, passenger, result.Reservation, result.Ticket); warning != "" {
		result.Warning = warning
	}
	return result, nil
}

// Cancel releases the reservation's seat and voids its ticket, if any.
func (s *ReservationService) Cancel(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	var (
		reservation *domain.Reservation
		voided      *domain.Ticket
	)
	err := s.ledger.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		voided = nil
		current, _, err := s.lockOwned(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}
		if current.Status == domain.ReservationStatusCancelled {
			return fmt.Errorf("%w: reservation %d is already cancelled", domain.ErrInvalidTransition, current.ID)
		}

		reservation, err = tx.UpdateReservationStatus(ctx, current.ID, domain.ReservationStatusCancelled, false)
		if err != nil {
			return err
		}

		ticket, err := tx.TicketByReservation(ctx, current.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		voided, err = s.tickets.VoidInTx(ctx, tx, ticket)
		return err
	})
	if err != nil {
		return nil, err
	}

	code := ""
	if voided != nil {
		code = voided.Code
	}
	s.log.Info("reservation cancelled", "reservation_id", reservation.ID, "ticket_code", code)
	s.publish(ctx, kafka.EventReservationCancelled, reservation, code)
	return reservation, nil
}

// SetStatus accepts only CONFIRMED and CANCELLED as targets. For a
// cancellation only Reservation is set in the result.
func (s *ReservationService) SetStatus(ctx context.Context, actor domain.Actor, reservationID int64, raw string) (*ConfirmResult, error) {
	status, ok := domain.ParseReservationStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, raw)
	}

	switch status {
	case domain.ReservationStatusConfirmed:
		return s.Confirm(ctx, actor, reservationID)
	case domain.ReservationStatusCancelled:
		reservation, err := s.Cancel(ctx, actor, reservationID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResult{Reservation: reservation}, nil
	default:
		return nil, fmt.Errorf("%w: %s cannot be set", domain.ErrInvalidStatus, status)
	}
}

func (s *ReservationService) Get(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	owner, err := s.reservations.OwnerOf(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(owner) {
		return nil, domain.ErrForbidden
	}
	return reservation, nil
}

func (s *ReservationService) List(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	if actor.Admin {
		return s.reservations.ListAll(ctx)
	}
	return s.reservations.ListByUser(ctx, actor.UserID)
}

// publish reports a committed change. Failures are logged only.
func (s *ReservationService) publish(ctx context.Context, eventType string, r *domain.Reservation, ticketCode string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		PassengerID:   r.PassengerID,
		FlightID:      r.FlightID,
		SeatID:        r.SeatID,
		Status:        string(r.Status),
		Active:        r.Active,
		TicketCode:    ticketCode,
		OccurredAt:    s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, strconv.FormatInt(r.ID, 10), event); err != nil {
		s.log.Warn("failed to publish reservation event", "type", eventType, "reservation_id", r.ID, "error", err)
	}
}

// notify hands the ticket to the notification worker and returns a warning
// instead of an error when that is not possible.
func (s *ReservationService) notify(ctx context.Context, p *domain.Passenger, r *domain.Reservation, t *domain.Ticket) string {
	if s.producer == nil || s.notificationsTopic == "" {
		return ""
	}
	if strings.TrimSpace(p.Email) == "" {
		s.log.Warn("passenger has no e-mail, ticket notification skipped", "reservation_id", r.ID)
		return "passenger has no e-mail address; ticket notification not sent"
	}

	notification := kafka.TicketNotification{
		ReservationID: r.ID,
		FlightID:      r.FlightID,
		PassengerName: strings.TrimSpace(p.FirstName + " " + p.LastName),
		Email:         p.Email,
		TicketCode:    t.Code,
		IssuedAt:      t.IssuedAt,
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, strconv.FormatInt(r.ID, 10), notification); err != nil {
		s.log.Warn("failed to publish ticket notification", "reservation_id", r.ID, "error", err)
		return "reservation confirmed but the ticket notification could not be sent"
	}
	return ""
}

var _ ReservationUseCase = (*ReservationService)(nil)
