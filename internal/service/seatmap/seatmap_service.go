package seatmap

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
)

// MaxColumns is bounded by the single-letter column naming.
const MaxColumns = 26

type SeatMapUseCase interface {
	CreateAircraft(ctx context.Context, input AircraftInput) (*AircraftLayout, error)
	UpdateAircraft(ctx context.Context, id int64, input AircraftInput) (*AircraftLayout, error)
	SeatsOf(ctx context.Context, aircraftID int64) ([]domain.Seat, error)
	Seat(ctx context.Context, aircraftID, seatID int64) (*domain.Seat, error)
	FlightSeatMap(ctx context.Context, flightID int64) (*FlightSeatMap, error)
}

type Cache interface {
	GetSeats(ctx context.Context, aircraftID int64) ([]domain.Seat, error)
	SetSeats(ctx context.Context, aircraftID int64, seats []domain.Seat) error
	InvalidateSeats(ctx context.Context, aircraftID int64) error
}

type AircraftInput struct {
	Model   string `json:"model"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

type AircraftLayout struct {
	Aircraft domain.Aircraft `json:"aircraft"`
	Seats    []domain.Seat   `json:"seats"`
}

type SeatState struct {
	domain.Seat
	Occupied bool `json:"occupied"`
}

// FlightSeatMap is an advisory occupancy snapshot; it is not used to arbitrate bookings.
type FlightSeatMap struct {
	FlightID         int64       `json:"flight_id"`
	AircraftID       int64       `json:"aircraft_id"`
	Seats            []SeatState `json:"seats"`
	TotalSeats       int         `json:"total_seats"`
	OccupiedSeats    int         `json:"occupied_seats"`
	OccupancyPercent float64     `json:"occupancy_percent"`
}

type SeatMapService struct {
	aircraft       repository.AircraftRepository
	flights        repository.FlightRepository
	reservations   repository.ReservationRepository
	cache          Cache
	firstClassRows int
	log            *slog.Logger
}

func NewSeatMapService(
	aircraft repository.AircraftRepository,
	flights repository.FlightRepository,
	reservations repository.ReservationRepository,
	cache Cache,
	firstClassRows int,
	logger *slog.Logger,
) *SeatMapService {
	return &SeatMapService{
		aircraft:       aircraft,
		flights:        flights,
		reservations:   reservations,
		cache:          cache,
		firstClassRows: firstClassRows,
		log:            logger,
	}
}

// GenerateSeats lays out one seat per grid cell, row-major, numbered
// "<row><letter>" with letters starting at A. Rows up to firstClassRows are
// first class.
func GenerateSeats(rows, columns, firstClassRows int) []domain.Seat {
	seats := make([]domain.Seat, 0, rows*columns)
	for row := 1; row <= rows; row++ {
		class := domain.SeatClassEconomy
		if row <= firstClassRows {
			class = domain.SeatClassFirst
		}
		for col := 0; col < columns; col++ {
			letter := string(rune('A' + col))
			seats = append(seats, domain.Seat{
				Number: fmt.Sprintf("%d%s", row, letter),
				Row:    row,
				Column: letter,
				Class:  class,
			})
		}
	}
	return seats
}

func (in AircraftInput) validate() error {
	if strings.TrimSpace(in.Model) == "" {
		return fmt.Errorf("%w: model is required", domain.ErrValidation)
	}
	if in.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive", domain.ErrValidation)
	}
	if in.Columns <= 0 || in.Columns > MaxColumns {
		return fmt.Errorf("%w: columns must be between 1 and %d", domain.ErrValidation, MaxColumns)
	}
	return nil
}

func (s *SeatMapService) CreateAircraft(ctx context.Context, input AircraftInput) (*AircraftLayout, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	aircraft := &domain.Aircraft{
		Model:    strings.TrimSpace(input.Model),
		Rows:     input.Rows,
		Columns:  input.Columns,
		Capacity: input.Rows * input.Columns,
	}
	seats, err := s.aircraft.Create(ctx, aircraft, GenerateSeats(input.Rows, input.Columns, s.firstClassRows))
	if err != nil {
		return nil, err
	}

	s.log.Info("aircraft created", "aircraft_id", aircraft.ID, "model", aircraft.Model, "capacity", aircraft.Capacity)
	return &AircraftLayout{Aircraft: *aircraft, Seats: seats}, nil
}

// UpdateAircraft renames in place when the grid is unchanged and otherwise
// regenerates the whole seat set.
func (s *SeatMapService) UpdateAircraft(ctx context.Context, id int64, input AircraftInput) (*AircraftLayout, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	current, err := s.aircraft.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(input.Model)
	if current.Rows == input.Rows && current.Columns == input.Columns {
		renamed, err := s.aircraft.Rename(ctx, id, model)
		if err != nil {
			return nil, err
		}
		seats, err := s.SeatsOf(ctx, id)
		if err != nil {
			return nil, err
		}
		return &AircraftLayout{Aircraft: *renamed, Seats: seats}, nil
	}

	resized := &domain.Aircraft{
		ID:       id,
		Model:    model,
		Rows:     input.Rows,
		Columns:  input.Columns,
		Capacity: input.Rows * input.Columns,
	}
	// Dropped before and after: a read racing the resize may refill the entry
	// with the old seat set.
	s.invalidateSeats(ctx, id)
	seats, err := s.aircraft.Resize(ctx, resized, GenerateSeats(input.Rows, input.Columns, s.firstClassRows))
	if err != nil {
		return nil, err
	}
	s.invalidateSeats(ctx, id)

	s.log.Info("aircraft seat set regenerated", "aircraft_id", id, "capacity", resized.Capacity)
	return &AircraftLayout{Aircraft: *resized, Seats: seats}, nil
}

func (s *SeatMapService) invalidateSeats(ctx context.Context, aircraftID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSeats(ctx, aircraftID); err != nil {
		s.log.Warn("seat cache invalidation failed", "aircraft_id", aircraftID, "error", err)
	}
}

func (s *SeatMapService) SeatsOf(ctx context.Context, aircraftID int64) ([]domain.Seat, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSeats(ctx, aircraftID)
		if err != nil {
			s.log.Warn("seat cache read failed", "aircraft_id", aircraftID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	if _, err := s.aircraft.GetByID(ctx, aircraftID); err != nil {
		return nil, err
	}
	seats, err := s.aircraft.Seats(ctx, aircraftID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSeats(ctx, aircraftID, seats); err != nil {
			s.log.Warn("seat cache write failed", "aircraft_id", aircraftID, "error", err)
		}
	}
	return seats, nil
}

func (s *SeatMapService) Seat(ctx context.Context, aircraftID, seatID int64) (*domain.Seat, error) {
	return s.aircraft.Seat(ctx, aircraftID, seatID)
}

func (s *SeatMapService) FlightSeatMap(ctx context.Context, flightID int64) (*FlightSeatMap, error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	seats, err := s.SeatsOf(ctx, flight.AircraftID)
	if err != nil {
		return nil, err
	}
	taken, err := s.reservations.ActiveSeatIDs(ctx, flightID)
	if err != nil {
		return nil, err
	}

	occupied := make(map[int64]struct{}, len(taken))
	for _, id := range taken {
		occupied[id] = struct{}{}
	}

	out := &FlightSeatMap{
		FlightID:   flightID,
		AircraftID: flight.AircraftID,
		Seats:      make([]SeatState, 0, len(seats)),
		TotalSeats: len(seats),
	}
	for _, seat := range seats {
		_, busy := occupied[seat.ID]
		if busy {
			out.OccupiedSeats++
		}
		out.Seats = append(out.Seats, SeatState{Seat: seat, Occupied: busy})
	}
	if out.TotalSeats > 0 {
		pct := float64(out.OccupiedSeats) / float64(out.TotalSeats) * 100
		out.OccupancyPercent = math.Round(pct*100) / 100
	}
	return out, nil
}

var _ SeatMapUseCase = (*SeatMapService)(nil)
