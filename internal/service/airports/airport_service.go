package airports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
)

type AirportUseCase interface {
	Create(ctx context.Context, input AirportInput) (*domain.Airport, error)
	GetByID(ctx context.Context, id int64) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
}

type AirportInput struct {
	IATA      string  `json:"iata"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Province  string  `json:"province"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Kind      string  `json:"kind"`
}

type AirportService struct {
	repo repository.AirportRepository
	log  *slog.Logger
}

func NewAirportService(repo repository.AirportRepository, logger *slog.Logger) *AirportService {
	return &AirportService{repo: repo, log: logger}
}

func validIATA(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (s *AirportService) Create(ctx context.Context, input AirportInput) (*domain.Airport, error) {
	a := &domain.Airport{
		IATA:      strings.ToUpper(strings.TrimSpace(input.IATA)),
		Name:      strings.TrimSpace(input.Name),
		City:      strings.TrimSpace(input.City),
		Province:  strings.TrimSpace(input.Province),
		Country:   strings.TrimSpace(input.Country),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Kind:      strings.TrimSpace(input.Kind),
	}
	if !validIATA(a.IATA) {
		return nil, fmt.Errorf("%w: iata must be three letters", domain.ErrValidation)
	}
	if a.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if a.Latitude < -90 || a.Latitude > 90 || a.Longitude < -180 || a.Longitude > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrValidation)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("airport created", "airport_id", a.ID, "iata", a.IATA)
	return a, nil
}

func (s *AirportService) GetByID(ctx context.Context, id int64) (*domain.Airport, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AirportService) List(ctx context.Context) ([]domain.Airport, error) {
	return s.repo.List(ctx)
}

var _ AirportUseCase = (*AirportService)(nil)
