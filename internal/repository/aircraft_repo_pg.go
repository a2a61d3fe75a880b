package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AircraftRepository interface {
	// Create stores the aircraft and its seat set atomically and returns the stored seats.
	Create(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) ([]domain.Seat, error)
	// Resize replaces the seat set. It fails with domain.ErrSeatsInUse when
	// any reservation references one of the current seats.
	Resize(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) ([]domain.Seat, error)
	Rename(ctx context.Context, id int64, model string) (*domain.Aircraft, error)
	GetByID(ctx context.Context, id int64) (*domain.Aircraft, error)
	Seats(ctx context.Context, aircraftID int64) ([]domain.Seat, error)
	Seat(ctx context.Context, aircraftID, seatID int64) (*domain.Seat, error)
}

type PGAircraftRepository struct {
	db *pgxpool.Pool
}

func NewAircraftRepository(db *pgxpool.Pool) AircraftRepository {
	return &PGAircraftRepository{db: db}
}

const aircraftColumns = `id, model, rows, columns, capacity, created_at, updated_at`

func scanAircraft(row scanner) (*domain.Aircraft, error) {
	var a domain.Aircraft
	if err := row.Scan(&a.ID, &a.Model, &a.Rows, &a.Columns, &a.Capacity, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

const seatColumns = `id, aircraft_id, number, row_number, column_letter, class`

func scanSeat(row scanner) (*domain.Seat, error) {
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.AircraftID, &s.Number, &s.Row, &s.Column, &s.Class); err != nil {
		return nil, err
	}
	s.Column = strings.TrimSpace(s.Column)
	return &s, nil
}

func (r *PGAircraftRepository) Create(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) ([]domain.Seat, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO aircraft (model, rows, columns, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		aircraft.Model, aircraft.Rows, aircraft.Columns, aircraft.Capacity).
		Scan(&aircraft.ID, &aircraft.CreatedAt, &aircraft.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert aircraft: %w", translate(err))
	}

	if err := copySeats(ctx, tx, aircraft.ID, seats); err != nil {
		return nil, err
	}
	stored, err := listSeats(ctx, tx, aircraft.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return stored, nil
}

func (r *PGAircraftRepository) Resize(ctx context.Context, aircraft *domain.Aircraft, seats []domain.Seat) ([]domain.Seat, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row lock on the aircraft keeps concurrent resizes apart.
	if _, err := scanAircraft(tx.QueryRow(ctx, `SELECT `+aircraftColumns+` FROM aircraft WHERE id = $1 FOR UPDATE`, aircraft.ID)); err != nil {
		return nil, fmt.Errorf("lock aircraft %d: %w", aircraft.ID, translate(err))
	}

	var inUse bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM reservations r JOIN seats s ON s.id = r.seat_id WHERE s.aircraft_id = $1)`, aircraft.ID).Scan(&inUse); err != nil {
		return nil, fmt.Errorf("check seat usage: %w", err)
	}
	if inUse {
		return nil, domain.ErrSeatsInUse
	}

	if _, err := tx.Exec(ctx, `DELETE FROM seats WHERE aircraft_id = $1`, aircraft.ID); err != nil {
		return nil, fmt.Errorf("delete seats: %w", seatDeleteError(err))
	}
	if err := tx.QueryRow(ctx, `UPDATE aircraft SET model = $1, rows = $2, columns = $3, capacity = $4, updated_at = now()
		WHERE id = $5
		RETURNING created_at, updated_at`,
		aircraft.Model, aircraft.Rows, aircraft.Columns, aircraft.Capacity, aircraft.ID).
		Scan(&aircraft.CreatedAt, &aircraft.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update aircraft: %w", translate(err))
	}
	if err := copySeats(ctx, tx, aircraft.ID, seats); err != nil {
		return nil, err
	}
	stored, err := listSeats(ctx, tx, aircraft.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return stored, nil
}

// seatDeleteError reports a reservation that referenced a seat after the
// usage check (a booking committed in between) as seats in use.
func seatDeleteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return fmt.Errorf("%w: %s", domain.ErrSeatsInUse, pgErr.ConstraintName)
	}
	return translate(err)
}

func (r *PGAircraftRepository) Rename(ctx context.Context, id int64, model string) (*domain.Aircraft, error) {
	a, err := scanAircraft(r.db.QueryRow(ctx, `UPDATE aircraft SET model = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+aircraftColumns, model, id))
	if err != nil {
		return nil, fmt.Errorf("rename aircraft %d: %w", id, translate(err))
	}
	return a, nil
}

func (r *PGAircraftRepository) GetByID(ctx context.Context, id int64) (*domain.Aircraft, error) {
	a, err := scanAircraft(r.db.QueryRow(ctx, `SELECT `+aircraftColumns+` FROM aircraft WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get aircraft %d: %w", id, translate(err))
	}
	return a, nil
}

func (r *PGAircraftRepository) Seats(ctx context.Context, aircraftID int64) ([]domain.Seat, error) {
	return listSeats(ctx, r.db, aircraftID)
}

func (r *PGAircraftRepository) Seat(ctx context.Context, aircraftID, seatID int64) (*domain.Seat, error) {
	s, err := scanSeat(r.db.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats WHERE aircraft_id = $1 AND id = $2`, aircraftID, seatID))
	if err != nil {
		return nil, fmt.Errorf("get seat %d of aircraft %d: %w", seatID, aircraftID, translate(err))
	}
	return s, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSeats(ctx context.Context, q querier, aircraftID int64) ([]domain.Seat, error) {
	rows, err := q.Query(ctx, `SELECT `+seatColumns+` FROM seats WHERE aircraft_id = $1 ORDER BY row_number, column_letter`, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, *s)
	}
	return seats, rows.Err()
}

func copySeats(ctx context.Context, tx pgx.Tx, aircraftID int64, seats []domain.Seat) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"seats"},
		[]string{"aircraft_id", "number", "row_number", "column_letter", "class"},
		pgx.CopyFromSlice(len(seats), func(i int) ([]any, error) {
			s := seats[i]
			return []any{aircraftID, s.Number, s.Row, s.Column, string(s.Class)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy seats: %w", translate(err))
	}
	return nil
}

var _ AircraftRepository = (*PGAircraftRepository)(nil)
