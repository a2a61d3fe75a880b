package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PassengerRepository interface {
	Create(ctx context.Context, passenger *domain.Passenger) error
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Passenger, error)
}

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

const passengerColumns = `id, user_id, first_name, last_name, passport, birth_date, nationality, gender, email, phone, created_at`

func scanPassenger(row scanner) (*domain.Passenger, error) {
	var (
		p     domain.Passenger
		birth pgtype.Date
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Passport, &birth,
		&p.Nationality, &p.Gender, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
		return nil, err
	}
	if birth.Valid {
		p.BirthDate = birth.Time
	}
	return &p, nil
}

func (r *PGPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	birth := pgtype.Date{Time: passenger.BirthDate, Valid: !passenger.BirthDate.IsZero()}
	err := r.db.QueryRow(ctx, `INSERT INTO passengers
		(user_id, first_name, last_name, passport, birth_date, nationality, gender, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		passenger.UserID, passenger.FirstName, passenger.LastName, passenger.Passport, birth,
		passenger.Nationality, passenger.Gender, passenger.Email, passenger.Phone).
		Scan(&passenger.ID, &passenger.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert passenger: %w", translate(err))
	}
	return nil
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	p, err := scanPassenger(r.db.QueryRow(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get passenger %d: %w", id, translate(err))
	}
	return p, nil
}

func (r *PGPassengerRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		passengers = append(passengers, *p)
	}
	return passengers, rows.Err()
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
