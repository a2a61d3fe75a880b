package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
)

func (s *Store) ownerOf(r domain.Reservation) *int64 {
	p, ok := s.data.passengers[r.PassengerID]
	if !ok {
		return nil
	}
	return p.UserID
}

func sortedReservations(in []domain.Reservation) []domain.Reservation {
	sort.Slice(in, func(i, j int) bool { return in[i].ID > in[j].ID })
	return in
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.reservations[id]
	if !ok {
		return nil, fmt.Errorf("get reservation %d: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

func (s *Store) ListByUser(_ context.Context, userID int64) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Reservation, 0)
	for _, r := range s.data.reservations {
		if owner := s.ownerOf(r); owner != nil && *owner == userID {
			out = append(out, r)
		}
	}
	return sortedReservations(out), nil
}

func (s *Store) ListAll(_ context.Context) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Reservation, 0, len(s.data.reservations))
	for _, r := range s.data.reservations {
		out = append(out, r)
	}
	return sortedReservations(out), nil
}

func (s *Store) OwnerOf(_ context.Context, reservationID int64) (*int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.reservations[reservationID]
	if !ok {
		return nil, fmt.Errorf("owner of reservation %d: %w", reservationID, domain.ErrNotFound)
	}
	return s.ownerOf(r), nil
}

func (s *Store) ActiveSeatIDs(_ context.Context, flightID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0)
	for _, r := range s.data.reservations {
		if r.FlightID == flightID && r.Active {
			ids = append(ids, r.SeatID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// TicketRepository exposes the ticket reads of the store. It is a separate
// type because its GetByID collides with the reservation one.
type TicketRepository struct {
	store *Store
}

func (s *Store) TicketRepository() *TicketRepository {
	return &TicketRepository{store: s}
}

func (r *TicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.data.tickets[id]
	if !ok {
		return nil, fmt.Errorf("get ticket %d: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *TicketRepository) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.data.tickets {
		if t.Code == code {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("get ticket %q: %w", code, domain.ErrNotFound)
}

func (r *TicketRepository) ListByUser(_ context.Context, userID int64) ([]domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.Ticket, 0)
	for _, t := range r.store.data.tickets {
		res, ok := r.store.data.reservations[t.ReservationID]
		if !ok {
			continue
		}
		if owner := r.store.ownerOf(res); owner != nil && *owner == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *TicketRepository) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.Ticket, 0, len(r.store.data.tickets))
	for _, t := range r.store.data.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

var (
	_ repository.ReservationRepository = (*Store)(nil)
	_ repository.TicketRepository      = (*TicketRepository)(nil)
)
