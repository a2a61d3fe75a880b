package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlightFilter narrows Filter results. Zero values match everything.
type FlightFilter struct {
	Origin      string
	Destination string
	Date        *time.Time
}

type FlightRepository interface {
	Filter(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const selectFlight = `SELECT f.id, f.aircraft_id, f.origin_id, o.iata, f.destination_id, d.iata,
	f.departure_time, f.arrival_time, f.duration_seconds, f.status, f.base_price_cents, f.created_at, f.updated_at
	FROM flights f
	JOIN airports o ON o.id = f.origin_id
	JOIN airports d ON d.id = f.destination_id`

func scanFlight(row scanner) (*domain.Flight, error) {
	var (
		f        domain.Flight
		duration int64
	)
	if err := row.Scan(&f.ID, &f.AircraftID, &f.OriginAirportID, &f.OriginIATA, &f.DestinationAirportID, &f.DestinationIATA,
		&f.DepartureTime, &f.ArrivalTime, &duration, &f.Status, &f.BasePriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.OriginIATA = strings.TrimSpace(f.OriginIATA)
	f.DestinationIATA = strings.TrimSpace(f.DestinationIATA)
	f.Duration = time.Duration(duration) * time.Second
	return &f, nil
}

// filterQuery builds the Filter statement. The date matches the UTC calendar
// day of the departure.
func filterQuery(filter FlightFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		where = append(where, fmt.Sprintf("upper(o.iata) = upper($%d)", len(args)))
	}
	if filter.Destination != "" {
		args = append(args, filter.Destination)
		where = append(where, fmt.Sprintf("upper(d.iata) = upper($%d)", len(args)))
	}
	if filter.Date != nil {
		day := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, time.UTC)
		args = append(args, day, day.AddDate(0, 0, 1))
		where = append(where, fmt.Sprintf("f.departure_time >= $%d AND f.departure_time < $%d", len(args)-1, len(args)))
	}

	query := selectFlight
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY f.departure_time, f.id", args
}

func (r *PGFlightRepository) Filter(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query, args := filterQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, selectFlight+` WHERE f.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get flight %d: %w", id, translate(err))
	}
	return f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO flights
		(aircraft_id, origin_id, destination_id, departure_time, arrival_time, duration_seconds, status, base_price_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		flight.AircraftID, flight.OriginAirportID, flight.DestinationAirportID, flight.DepartureTime, flight.ArrivalTime,
		int64(flight.Duration/time.Second), flight.Status, flight.BasePriceCents).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert flight: %w", translate(err))
	}

	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*flight = *stored
	return nil
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update flight status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("update flight %d: %w", id, domain.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
