package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerTx is the view of the reservation ledger inside one database
// transaction. Writes rely on the partial unique indexes in schema.sql, so
// conflicting inserts and seat swaps fail with the matching domain error
// instead of being checked in application code.
type LedgerTx interface {
	PassengerByID(ctx context.Context, id int64) (*domain.Passenger, error)
	FlightByID(ctx context.Context, id int64) (*domain.Flight, error)
	SeatByID(ctx context.Context, id int64) (*domain.Seat, error)

	// ReservationForUpdate locks the row until the transaction ends.
	ReservationForUpdate(ctx context.Context, id int64) (*domain.Reservation, error)
	InsertReservation(ctx context.Context, reservation *domain.Reservation) error
	UpdateReservationSeat(ctx context.Context, id, seatID int64) (*domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, status domain.ReservationStatus, active bool) (*domain.Reservation, error)

	TicketByReservation(ctx context.Context, reservationID int64) (*domain.Ticket, error)
	TicketForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	// InsertTicket returns ErrTicketCodeTaken when the code collides and
	// domain.ErrDuplicateTicket when the reservation already has a ticket.
	InsertTicket(ctx context.Context, ticket *domain.Ticket) error
	VoidTicket(ctx context.Context, id int64, at time.Time) (*domain.Ticket, error)
}

// Ledger runs ledger transactions.
type Ledger interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

type LedgerOption func(*PGLedger)

func WithIsoLevel(level pgx.TxIsoLevel) LedgerOption {
	return func(l *PGLedger) {
		l.isoLevel = level
	}
}

func WithAttempts(n int) LedgerOption {
	return func(l *PGLedger) {
		if n > 0 {
			l.attempts = n
		}
	}
}

func WithTxTimeout(d time.Duration) LedgerOption {
	return func(l *PGLedger) {
		l.timeout = d
	}
}

func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *PGLedger) {
		l.log = logger
	}
}

// TxBeginner starts database transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PGLedger struct {
	db       TxBeginner
	isoLevel pgx.TxIsoLevel
	attempts int
	timeout  time.Duration
	log      *slog.Logger
}

func NewLedger(db TxBeginner, opts ...LedgerOption) *PGLedger {
	l := &PGLedger{
		db:       db,
		isoLevel: pgx.ReadCommitted,
		attempts: 3,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InTx runs fn in a transaction and commits when it returns nil.
// Serialization failures and deadlocks restart fn from scratch; once the
// attempts are used up the error is reported as domain.ErrConflict.
func (l *PGLedger) InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	var lastErr error
	for attempt := 1; attempt <= l.attempts; attempt++ {
		err := l.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
		l.log.Warn("ledger transaction contention", "attempt", attempt, "error", err)
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

func (l *PGLedger) runOnce(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: l.isoLevel})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgLedgerTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgLedgerTx struct {
	tx pgx.Tx
}

const reservationColumns = `id, passenger_id, flight_id, seat_id, status, active, created_at, updated_at`

func scanReservation(row scanner) (*domain.Reservation, error) {
	var r domain.Reservation
	if err := row.Scan(&r.ID, &r.PassengerID, &r.FlightID, &r.SeatID, &r.Status, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

const ticketColumns = `id, reservation_id, code, status, issued_at, voided_at`

func scanTicket(row scanner) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.ReservationID, &t.Code, &t.Status, &t.IssuedAt, &t.VoidedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *pgLedgerTx) PassengerByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	p, err := scanPassenger(t.tx.QueryRow(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("passenger %d: %w", id, translate(err))
	}
	return p, nil
}

func (t *pgLedgerTx) FlightByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(t.tx.QueryRow(ctx, selectFlight+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("flight %d: %w", id, translate(err))
	}
	return f, nil
}

func (t *pgLedgerTx) SeatByID(ctx context.Context, id int64) (*domain.Seat, error) {
	s, err := scanSeat(t.tx.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("seat %d: %w", id, translate(err))
	}
	return s, nil
}

func (t *pgLedgerTx) ReservationForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, err := scanReservation(t.tx.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", id, translate(err))
	}
	return r, nil
}

func (t *pgLedgerTx) InsertReservation(ctx context.Context, reservation *domain.Reservation) error {
	err := t.tx.QueryRow(ctx, `INSERT INTO reservations (passenger_id, flight_id, seat_id, status, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		reservation.PassengerID, reservation.FlightID, reservation.SeatID, reservation.Status, reservation.Active).
		Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", translate(err))
	}
	return nil
}

func (t *pgLedgerTx) UpdateReservationSeat(ctx context.Context, id, seatID int64) (*domain.Reservation, error) {
	r, err := scanReservation(t.tx.QueryRow(ctx, `UPDATE reservations SET seat_id = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+reservationColumns, seatID, id))
	if err != nil {
		return nil, fmt.Errorf("reseat reservation %d: %w", id, translate(err))
	}
	return r, nil
}

func (t *pgLedgerTx) UpdateReservationStatus(ctx context.Context, id int64, status domain.ReservationStatus, active bool) (*domain.Reservation, error) {
	r, err := scanReservation(t.tx.QueryRow(ctx, `UPDATE reservations SET status = $1, active = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+reservationColumns, status, active, id))
	if err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", id, translate(err))
	}
	return r, nil
}

func (t *pgLedgerTx) TicketByReservation(ctx context.Context, reservationID int64) (*domain.Ticket, error) {
	tk, err := scanTicket(t.tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE reservation_id = $1`, reservationID))
	if err != nil {
		return nil, fmt.Errorf("ticket for reservation %d: %w", reservationID, translate(err))
	}
	return tk, nil
}

func (t *pgLedgerTx) TicketForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	tk, err := scanTicket(t.tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", id, translate(err))
	}
	return tk, nil
}

func (t *pgLedgerTx) InsertTicket(ctx context.Context, ticket *domain.Ticket) error {
	// ON CONFLICT (code) keeps a code collision from aborting the transaction;
	// a second ticket for the same reservation still raises a unique violation.
	err := t.tx.QueryRow(ctx, `INSERT INTO tickets (reservation_id, code, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
		RETURNING id, issued_at`,
		ticket.ReservationID, ticket.Code, ticket.Status).Scan(&ticket.ID, &ticket.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTicketCodeTaken
	}
	if err != nil {
		return fmt.Errorf("insert ticket: %w", translate(err))
	}
	return nil
}

func (t *pgLedgerTx) VoidTicket(ctx context.Context, id int64, at time.Time) (*domain.Ticket, error) {
	tk, err := scanTicket(t.tx.QueryRow(ctx, `UPDATE tickets SET status = $1, voided_at = $2
		WHERE id = $3
		RETURNING `+ticketColumns, domain.TicketStatusVoided, at, id))
	if err != nil {
		return nil, fmt.Errorf("void ticket %d: %w", id, translate(err))
	}
	return tk, nil
}

var (
	_ TxBeginner = (*pgxpool.Pool)(nil)
	_ Ledger     = (*PGLedger)(nil)
	_ LedgerTx   = (*pgLedgerTx)(nil)
)
