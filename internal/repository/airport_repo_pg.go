package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AirportRepository interface {
	Create(ctx context.Context, airport *domain.Airport) error
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
}

type PGAirportRepository struct {
	db *pgxpool.Pool
}

func NewAirportRepository(db *pgxpool.Pool) AirportRepository {
	return &PGAirportRepository{db: db}
}

const airportColumns = `id, iata, name, city, province, country, latitude, longitude, kind`

func scanAirport(row scanner) (*domain.Airport, error) {
	var a domain.Airport
	if err := row.Scan(&a.ID, &a.IATA, &a.Name, &a.City, &a.Province, &a.Country, &a.Latitude, &a.Longitude, &a.Kind); err != nil {
		return nil, err
	}
	a.IATA = strings.TrimSpace(a.IATA)
	return &a, nil
}

func (r *PGAirportRepository) Create(ctx context.Context, airport *domain.Airport) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airports (iata, name, city, province, country, latitude, longitude, kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		airport.IATA, airport.Name, airport.City, airport.Province, airport.Country, airport.Latitude, airport.Longitude, airport.Kind).
		Scan(&airport.ID)
	if err != nil {
		return fmt.Errorf("insert airport: %w", translate(err))
	}
	return nil
}

func (r *PGAirportRepository) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	a, err := scanAirport(r.db.QueryRow(ctx, `SELECT `+airportColumns+` FROM airports WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get airport %d: %w", id, translate(err))
	}
	return a, nil
}

func (r *PGAirportRepository) List(ctx context.Context) ([]domain.Airport, error) {
	rows, err := r.db.Query(ctx, `SELECT `+airportColumns+` FROM airports ORDER BY iata`)
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	defer rows.Close()

	airports := make([]domain.Airport, 0)
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		airports = append(airports, *a)
	}
	return airports, rows.Err()
}

var _ AirportRepository = (*PGAirportRepository)(nil)
