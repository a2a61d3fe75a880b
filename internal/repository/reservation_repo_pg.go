package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReservationRepository serves reads outside ledger transactions. Results
// may lag concurrent writes.
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error)
	ListAll(ctx context.Context) ([]domain.Reservation, error)
	// OwnerOf returns the user owning the reservation's passenger, nil when unowned.
	OwnerOf(ctx context.Context, reservationID int64) (*int64, error)
	ActiveSeatIDs(ctx context.Context, flightID int64) ([]int64, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get reservation %d: %w", id, translate(err))
	}
	return res, nil
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT r.id, r.passenger_id, r.flight_id, r.seat_id, r.status, r.active, r.created_at, r.updated_at
		FROM reservations r
		JOIN passengers p ON p.id = r.passenger_id
		WHERE p.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) OwnerOf(ctx context.Context, reservationID int64) (*int64, error) {
	var owner *int64
	err := r.db.QueryRow(ctx, `SELECT p.user_id FROM reservations r
		JOIN passengers p ON p.id = r.passenger_id
		WHERE r.id = $1`, reservationID).Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("owner of reservation %d: %w", reservationID, translate(err))
	}
	return owner, nil
}

func (r *PGReservationRepository) ActiveSeatIDs(ctx context.Context, flightID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_id FROM reservations WHERE flight_id = $1 AND active`, flightID)
	if err != nil {
		return nil, fmt.Errorf("active seats: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan active seats: %w", err)
	}
	return ids, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
