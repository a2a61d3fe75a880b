package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airticketing/config"
	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerializationFailed = "40001"
	codeDeadlockDetected    = "40P01"
)

const (
	constraintReservationSeat      = "reservations_flight_seat_active_key"
	constraintReservationPassenger = "reservations_flight_passenger_active_key"
	constraintTicketReservation    = "tickets_reservation_id_key"
	constraintTicketCode           = "tickets_code_key"
	constraintPassengerPassport    = "passengers_user_passport_key"
	constraintAirportIATA          = "airports_iata_key"
)

// ErrTicketCodeTaken reports a ticket code collision; callers generate a new code.
var ErrTicketCodeTaken = errors.New("ticket code already taken")

// NewPool opens a pgx pool sized from the database config.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// ApplySchema creates missing tables and indexes. Statements are idempotent.
func ApplySchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// ParseIsoLevel maps the config spelling to a pgx isolation level.
func ParseIsoLevel(raw string) (pgx.TxIsoLevel, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "read committed":
		return pgx.ReadCommitted, nil
	case "repeatable read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	}
	return "", fmt.Errorf("unknown isolation level %q", raw)
}

// translate maps driver errors onto domain errors. Errors it does not
// recognise are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintReservationSeat:
			return domain.ErrSeatAlreadyReserved
		case constraintReservationPassenger:
			return domain.ErrDuplicatePassengerBooking
		case constraintTicketReservation:
			return domain.ErrDuplicateTicket
		case constraintTicketCode:
			return ErrTicketCodeTaken
		case constraintPassengerPassport:
			return domain.ErrPassengerExists
		case constraintAirportIATA:
			return domain.ErrAirportExists
		}
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.ConstraintName)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.ConstraintName)
	}
	return err
}

// retryable reports transient contention that is safe to retry from scratch.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailed || pgErr.Code == codeDeadlockDetected
}

type scanner interface {
	Scan(dest ...any) error
}
