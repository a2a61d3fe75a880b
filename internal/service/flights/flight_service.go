package flights

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
)

type FlightUseCase interface {
	Filter(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	RefreshStatus(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, input FlightInput) (*domain.Flight, error)
	SetStatus(ctx context.Context, id int64, raw string) (*domain.Flight, error)
}

type Cache interface {
	GetFlights(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error)
	SetFlights(ctx context.Context, filter repository.FlightFilter, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightInput struct {
	AircraftID           int64     `json:"aircraft_id"`
	OriginAirportID      int64     `json:"origin_airport_id"`
	DestinationAirportID int64     `json:"destination_airport_id"`
	DepartureTime        time.Time `json:"departure_time"`
	ArrivalTime          time.Time `json:"arrival_time"`
	BasePriceCents       int64     `json:"base_price_cents"`
}

type FlightService struct {
	repo     repository.FlightRepository
	aircraft repository.AircraftRepository
	airports repository.AirportRepository
	cache    Cache
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*FlightService)

// WithClock replaces time.Now for status derivation.
func WithClock(now func() time.Time) Option {
	return func(s *FlightService) { s.now = now }
}

func NewFlightService(
	repo repository.FlightRepository,
	aircraft repository.AircraftRepository,
	airports repository.AirportRepository,
	cache Cache,
	logger *slog.Logger,
	opts ...Option,
) *FlightService {
	s := &FlightService{
		repo:     repo,
		aircraft: aircraft,
		airports: airports,
		cache:    cache,
		now:      time.Now,
		log:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filter serves from the cache when possible. Statuses are always derived
// after the read, so a cached listing never reports a stale schedule state.
func (s *FlightService) Filter(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx, filter)
		if err != nil {
			s.log.Warn("flight cache read failed", "error", err)
		} else if cached != nil {
			return s.withDisplayStatus(cached), nil
		}
	}

	flights, err := s.repo.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, filter, flights); err != nil {
			s.log.Warn("flight cache write failed", "error", err)
		}
	}
	return s.withDisplayStatus(flights), nil
}

func (s *FlightService) withDisplayStatus(flights []domain.Flight) []domain.Flight {
	now := s.now()
	out := make([]domain.Flight, len(flights))
	for i, f := range flights {
		f.Status = f.StatusAt(now)
		out[i] = f
	}
	return out
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Status = f.StatusAt(s.now())
	return f, nil
}

// RefreshStatus persists the derived status when it differs from the stored
// one. Calling it repeatedly has no further effect.
func (s *FlightService) RefreshStatus(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := f.StatusAt(s.now())
	if next == f.Status {
		return f, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.log.Info("flight status refreshed", "flight_id", id, "from", f.Status, "to", next)
	s.invalidate(ctx)
	return updated, nil
}

func (s *FlightService) Create(ctx context.Context, input FlightInput) (*domain.Flight, error) {
	if input.OriginAirportID == input.DestinationAirportID {
		return nil, fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	}
	if !input.ArrivalTime.After(input.DepartureTime) {
		return nil, fmt.Errorf("%w: arrival must be after departure", domain.ErrValidation)
	}
	if input.BasePriceCents < 0 {
		return nil, fmt.Errorf("%w: base price must not be negative", domain.ErrValidation)
	}
	if _, err := s.aircraft.GetByID(ctx, input.AircraftID); err != nil {
		return nil, err
	}
	if _, err := s.airports.GetByID(ctx, input.OriginAirportID); err != nil {
		return nil, err
	}
	if _, err := s.airports.GetByID(ctx, input.DestinationAirportID); err != nil {
		return nil, err
	}

	f := &domain.Flight{
		AircraftID:           input.AircraftID,
		OriginAirportID:      input.OriginAirportID,
		DestinationAirportID: input.DestinationAirportID,
		DepartureTime:        input.DepartureTime.UTC(),
		ArrivalTime:          input.ArrivalTime.UTC(),
		Duration:             input.ArrivalTime.Sub(input.DepartureTime),
		BasePriceCents:       input.BasePriceCents,
	}
	f.Status = f.StatusAt(s.now())

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	s.log.Info("flight created", "flight_id", f.ID, "origin", f.OriginIATA, "destination", f.DestinationIATA)
	s.invalidate(ctx)
	return f, nil
}

// SetStatus pins CANCELLED or DELAYED. SCHEDULED removes the pin and lets
// the schedule decide again.
func (s *FlightService) SetStatus(ctx context.Context, id int64, raw string) (*domain.Flight, error) {
	status, ok := domain.ParseFlightStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, raw)
	}

	switch status {
	case domain.FlightStatusCancelled, domain.FlightStatusDelayed:
	case domain.FlightStatusScheduled:
		f, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		f.Status = domain.FlightStatusScheduled
		status = f.StatusAt(s.now())
	default:
		return nil, fmt.Errorf("%w: %s cannot be set manually", domain.ErrInvalidStatus, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("flight status set", "flight_id", id, "status", status)
	s.invalidate(ctx)
	return updated, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flight cache invalidation failed", "error", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
