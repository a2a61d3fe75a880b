// Package memory is an in-process stand-in for the PostgreSQL ledger. It
// applies the same uniqueness rules as schema.sql and runs transactions one
// at a time on a snapshot, so service tests can exercise arbitration
// without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
)

type state struct {
	passengers   map[int64]domain.Passenger
	flights      map[int64]domain.Flight
	seats        map[int64]domain.Seat
	reservations map[int64]domain.Reservation
	tickets      map[int64]domain.Ticket
	nextID       int64
}

func (s *state) clone() *state {
	c := &state{
		passengers:   make(map[int64]domain.Passenger, len(s.passengers)),
		flights:      make(map[int64]domain.Flight, len(s.flights)),
		seats:        make(map[int64]domain.Seat, len(s.seats)),
		reservations: make(map[int64]domain.Reservation, len(s.reservations)),
		tickets:      make(map[int64]domain.Ticket, len(s.tickets)),
		nextID:       s.nextID,
	}
	for k, v := range s.passengers {
		c.passengers[k] = v
	}
	for k, v := range s.flights {
		c.flights[k] = v
	}
	for k, v := range s.seats {
		c.seats[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store implements repository.Ledger together with the reservation and
// ticket read repositories over the same data.
type Store struct {
	mu      sync.Mutex
	data    *state
	now     func() time.Time
	commits int
}

func NewStore() *Store {
	return &Store{
		data: &state{
			passengers:   map[int64]domain.Passenger{},
			flights:      map[int64]domain.Flight{},
			seats:        map[int64]domain.Seat{},
			reservations: map[int64]domain.Reservation{},
			tickets:      map[int64]domain.Ticket{},
		},
		now: time.Now,
	}
}

func (s *Store) AddPassenger(p domain.Passenger) domain.Passenger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.data.id()
	}
	s.data.passengers[p.ID] = p
	return p
}

func (s *Store) AddFlight(f domain.Flight) domain.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == 0 {
		f.ID = s.data.id()
	}
	s.data.flights[f.ID] = f
	return f
}

func (s *Store) AddSeat(seat domain.Seat) domain.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat.ID == 0 {
		seat.ID = s.data.id()
	}
	s.data.seats[seat.ID] = seat
	return seat
}

// Commits returns the number of committed transactions.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Tickets returns every ticket of the reservation, in insertion order.
func (s *Store) Tickets(reservationID int64) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Ticket
	for _, t := range s.data.tickets {
		if t.ReservationID == reservationID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveReservations returns the active reservations of the flight.
func (s *Store) ActiveReservations(flightID int64) []domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Reservation
	for _, r := range s.data.reservations {
		if r.FlightID == flightID && r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InTx runs fn against a private snapshot and publishes it only when fn
// succeeds. Transactions are serialized.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.data.clone()
	if err := fn(ctx, &tx{data: snapshot, now: s.now}); err != nil {
		return err
	}
	s.data = snapshot
	s.commits++
	return nil
}

type tx struct {
	data *state
	now  func() time.Time
}

func (t *tx) PassengerByID(_ context.Context, id int64) (*domain.Passenger, error) {
	p, ok := t.data.passengers[id]
	if !ok {
		return nil, fmt.Errorf("passenger %d: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (t *tx) FlightByID(_ context.Context, id int64) (*domain.Flight, error) {
	f, ok := t.data.flights[id]
	if !ok {
		return nil, fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (t *tx) SeatByID(_ context.Context, id int64) (*domain.Seat, error) {
	seat, ok := t.data.seats[id]
	if !ok {
		return nil, fmt.Errorf("seat %d: %w", id, domain.ErrNotFound)
	}
	return &seat, nil
}

func (t *tx) ReservationForUpdate(_ context.Context, id int64) (*domain.Reservation, error) {
	r, ok := t.data.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

// checkActive mirrors the two partial unique indexes on active reservations.
// The passenger index is checked first, matching its creation order in
// schema.sql.
func (t *tx) checkActive(r domain.Reservation) error {
	if !r.Active {
		return nil
	}
	clashes := func(same func(other domain.Reservation) bool) bool {
		for _, other := range t.data.reservations {
			if other.ID == r.ID || !other.Active || other.FlightID != r.FlightID {
				continue
			}
			if same(other) {
				return true
			}
		}
		return false
	}
	if clashes(func(other domain.Reservation) bool { return other.PassengerID == r.PassengerID }) {
		return domain.ErrDuplicatePassengerBooking
	}
	if clashes(func(other domain.Reservation) bool { return other.SeatID == r.SeatID }) {
		return domain.ErrSeatAlreadyReserved
	}
	return nil
}

func (t *tx) InsertReservation(_ context.Context, r *domain.Reservation) error {
	if _, ok := t.data.passengers[r.PassengerID]; !ok {
		return fmt.Errorf("insert reservation: %w", domain.ErrNotFound)
	}
	if _, ok := t.data.flights[r.FlightID]; !ok {
		return fmt.Errorf("insert reservation: %w", domain.ErrNotFound)
	}
	if _, ok := t.data.seats[r.SeatID]; !ok {
		return fmt.Errorf("insert reservation: %w", domain.ErrNotFound)
	}
	if err := t.checkActive(*r); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	now := t.now()
	r.ID = t.data.id()
	r.CreatedAt, r.UpdatedAt = now, now
	t.data.reservations[r.ID] = *r
	return nil
}

func (t *tx) UpdateReservationSeat(_ context.Context, id, seatID int64) (*domain.Reservation, error) {
	r, ok := t.data.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reseat reservation %d: %w", id, domain.ErrNotFound)
	}
	if _, ok := t.data.seats[seatID]; !ok {
		return nil, fmt.Errorf("reseat reservation %d: %w", id, domain.ErrNotFound)
	}
	r.SeatID = seatID
	if err := t.checkActive(r); err != nil {
		return nil, fmt.Errorf("reseat reservation %d: %w", id, err)
	}
	r.UpdatedAt = t.now()
	t.data.reservations[id] = r
	return &r, nil
}

func (t *tx) UpdateReservationStatus(_ context.Context, id int64, status domain.ReservationStatus, active bool) (*domain.Reservation, error) {
	r, ok := t.data.reservations[id]
	if !ok {
		return nil, fmt.Errorf("update reservation %d: %w", id, domain.ErrNotFound)
	}
	r.Status, r.Active = status, active
	if err := t.checkActive(r); err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", id, err)
	}
	r.UpdatedAt = t.now()
	t.data.reservations[id] = r
	return &r, nil
}

func (t *tx) TicketByReservation(_ context.Context, reservationID int64) (*domain.Ticket, error) {
	for _, tk := range t.data.tickets {
		if tk.ReservationID == reservationID {
			return &tk, nil
		}
	}
	return nil, fmt.Errorf("ticket for reservation %d: %w", reservationID, domain.ErrNotFound)
}

func (t *tx) TicketForUpdate(_ context.Context, id int64) (*domain.Ticket, error) {
	tk, ok := t.data.tickets[id]
	if !ok {
		return nil, fmt.Errorf("ticket %d: %w", id, domain.ErrNotFound)
	}
	return &tk, nil
}

func (t *tx) InsertTicket(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := t.data.reservations[ticket.ReservationID]; !ok {
		return fmt.Errorf("insert ticket: %w", domain.ErrNotFound)
	}
	for _, tk := range t.data.tickets {
		if tk.Code == ticket.Code {
			return repository.ErrTicketCodeTaken
		}
	}
	for _, tk := range t.data.tickets {
		if tk.ReservationID == ticket.ReservationID {
			return fmt.Errorf("insert ticket: %w", domain.ErrDuplicateTicket)
		}
	}
	ticket.ID = t.data.id()
	ticket.IssuedAt = t.now()
	t.data.tickets[ticket.ID] = *ticket
	return nil
}

func (t *tx) VoidTicket(_ context.Context, id int64, at time.Time) (*domain.Ticket, error) {
	tk, ok := t.data.tickets[id]
	if !ok {
		return nil, fmt.Errorf("void ticket %d: %w", id, domain.ErrNotFound)
	}
	tk.Status = domain.TicketStatusVoided
	tk.VoidedAt = &at
	t.data.tickets[id] = tk
	return &tk, nil
}

var (
	_ repository.Ledger   = (*Store)(nil)
	_ repository.LedgerTx = (*tx)(nil)
)
