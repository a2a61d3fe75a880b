package passengers

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
)

const birthDateLayout = "2006-01-02"

type PassengerUseCase interface {
	Register(ctx context.Context, actor domain.Actor, input PassengerInput) (*domain.Passenger, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Passenger, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Passenger, error)
}

type PassengerInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Passport    string `json:"passport"`
	BirthDate   string `json:"birth_date"`
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	// UserID lets an administrator register a passenger for another user.
	UserID *int64 `json:"user_id,omitempty"`
}

type PassengerService struct {
	repo repository.PassengerRepository
	log  *slog.Logger
}

func NewPassengerService(repo repository.PassengerRepository, logger *slog.Logger) *PassengerService {
	return &PassengerService{repo: repo, log: logger}
}

func (in PassengerInput) toPassenger() (*domain.Passenger, error) {
	p := &domain.Passenger{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Passport:    strings.ToUpper(strings.TrimSpace(in.Passport)),
		Nationality: strings.TrimSpace(in.Nationality),
		Gender:      strings.TrimSpace(in.Gender),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	}
	if p.Passport == "" {
		return nil, fmt.Errorf("%w: passport is required", domain.ErrValidation)
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, p.Email)
		}
	}
	if in.BirthDate != "" {
		birth, err := time.Parse(birthDateLayout, in.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("%w: birth_date must be YYYY-MM-DD", domain.ErrValidation)
		}
		p.BirthDate = birth
	}
	return p, nil
}

// Register stores a passenger owned by the actor. Only administrators may
// pick a different owner. Passports are unique per owner.
func (s *PassengerService) Register(ctx context.Context, actor domain.Actor, input PassengerInput) (*domain.Passenger, error) {
	p, err := input.toPassenger()
	if err != nil {
		return nil, err
	}

	owner := actor.UserID
	if input.UserID != nil && *input.UserID != actor.UserID {
		if !actor.Admin {
			return nil, domain.ErrForbidden
		}
		owner = *input.UserID
	}
	p.UserID = &owner

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("passenger registered", "passenger_id", p.ID, "user_id", owner)
	return p, nil
}

func (s *PassengerService) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Passenger, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(p.UserID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *PassengerService) List(ctx context.Context, actor domain.Actor) ([]domain.Passenger, error) {
	return s.repo.ListByUser(ctx, actor.UserID)
}

var _ PassengerUseCase = (*PassengerService)(nil)
