package reservation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/kafka"
	"github.com/Domenick1991/airticketing/internal/repository/memory"
	"github.com/Domenick1991/airticketing/internal/service/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

const (
	eventsTopic        = "reservation-events"
	notificationsTopic = "ticket-notifications"
)

var (
	ownerA = int64(1)
	ownerB = int64(2)
)

type fixture struct {
	store    *memory.Store
	service  *ReservationService
	producer *MockProducer

	passengerA domain.Passenger
	passengerB domain.Passenger
	flight     domain.Flight
	seats      map[string]domain.Seat
	foreign    domain.Seat
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store, producer: &MockProducer{}, seats: map[string]domain.Seat{}}

	f.passengerA = store.AddPassenger(domain.Passenger{UserID: &ownerA, FirstName: "Lucia", LastName: "Perez", Passport: "P1", Email: "lucia@example.com"})
	f.passengerB = store.AddPassenger(domain.Passenger{UserID: &ownerB, FirstName: "Tomas", LastName: "Diaz", Passport: "P2", Email: "tomas@example.com"})
	f.flight = store.AddFlight(domain.Flight{AircraftID: 100, Status: domain.FlightStatusScheduled})
	for _, number := range []string{"5A", "5B", "5C", "6A"} {
		f.seats[number] = store.AddSeat(domain.Seat{AircraftID: 100, Number: number})
	}
	f.foreign = store.AddSeat(domain.Seat{AircraftID: 200, Number: "1A"})

	issuer := tickets.NewIssuer(store, store.TicketRepository(), store, discardLogger())
	f.service = NewReservationService(store, store, issuer, f.producer, eventsTopic, discardLogger(),
		WithNotificationsTopic(notificationsTopic))
	return f
}

// quiet accepts every publish.
func (f *fixture) quiet() *fixture {
	f.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return f
}

func (f *fixture) book(t *testing.T, passenger domain.Passenger, seat string) *domain.Reservation {
	t.Helper()
	r, err := f.service.Book(context.Background(), domain.Actor{UserID: *passenger.UserID},
		BookInput{PassengerID: passenger.ID, FlightID: f.flight.ID, SeatID: f.seats[seat].ID})
	require.NoError(t, err)
	return r
}

func TestReservationService_Book(t *testing.T) {
	f := newFixture(t).quiet()

	r := f.book(t, f.passengerA, "5A")

	assert.Equal(t, domain.ReservationStatusPending, r.Status)
	assert.True(t, r.Active)
	assert.Equal(t, f.seats["5A"].ID, r.SeatID)
	f.producer.AssertCalled(t, "Publish", mock.Anything, eventsTopic, mock.Anything, mock.MatchedBy(func(e kafka.ReservationEvent) bool {
		return e.Type == kafka.EventReservationCreated && e.ReservationID == r.ID
	}))
}

func TestReservationService_Book_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown entities", func(t *testing.T) {
		f := newFixture(t).quiet()
		actor := domain.Actor{UserID: ownerA}

		_, err := f.service.Book(ctx, actor, BookInput{PassengerID: 999, FlightID: f.flight.ID, SeatID: f.seats["5A"].ID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.service.Book(ctx, actor, BookInput{PassengerID: f.passengerA.ID, FlightID: 999, SeatID: f.seats["5A"].ID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.service.Book(ctx, actor, BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: 999})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("foreign passenger", func(t *testing.T) {
		f := newFixture(t).quiet()

		_, err := f.service.Book(ctx, domain.Actor{UserID: ownerB},
			BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.seats["5A"].ID})

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin may book for anyone", func(t *testing.T) {
		f := newFixture(t).quiet()

		_, err := f.service.Book(ctx, domain.Actor{UserID: 99, Admin: true},
			BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.seats["5A"].ID})

		assert.NoError(t, err)
	})

	t.Run("seat of another aircraft", func(t *testing.T) {
		f := newFixture(t).quiet()

		_, err := f.service.Book(ctx, domain.Actor{UserID: ownerA},
			BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.foreign.ID})

		assert.ErrorIs(t, err, domain.ErrSeatAircraftMismatch)
	})

	t.Run("cancelled flight", func(t *testing.T) {
		f := newFixture(t).quiet()
		cancelled := f.store.AddFlight(domain.Flight{AircraftID: 100, Status: domain.FlightStatusCancelled})

		_, err := f.service.Book(ctx, domain.Actor{UserID: ownerA},
			BookInput{PassengerID: f.passengerA.ID, FlightID: cancelled.ID, SeatID: f.seats["5A"].ID})

		assert.ErrorIs(t, err, domain.ErrFlightCancelled)
	})

	t.Run("seat taken", func(t *testing.T) {
		f := newFixture(t).quiet()
		f.book(t, f.passengerA, "5A")

		_, err := f.service.Book(ctx, domain.Actor{UserID: ownerB},
			BookInput{PassengerID: f.passengerB.ID, FlightID: f.flight.ID, SeatID: f.seats["5A"].ID})

		assert.ErrorIs(t, err, domain.ErrSeatAlreadyReserved)
	})

	t.Run("passenger already on flight", func(t *testing.T) {
		f := newFixture(t).quiet()
		f.book(t, f.passengerA, "5A")

		_, err := f.service.Book(ctx, domain.Actor{UserID: ownerA},
			BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.seats["5B"].ID})

		assert.ErrorIs(t, err, domain.ErrDuplicatePassengerBooking)
	})
}

func TestReservationService_Book_PassengerConflictReportedFirst(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	actor := domain.Actor{UserID: ownerA}

	f.book(t, f.passengerA, "5A")
	f.book(t, f.passengerB, "5B")

	// Seat 5B clashes with B's row and the passenger with A's own row.
	for i := 0; i < 50; i++ {
		_, err := f.service.Book(ctx, actor, BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.seats["5B"].ID})
		require.ErrorIs(t, err, domain.ErrDuplicatePassengerBooking)
		require.False(t, errors.Is(err, domain.ErrSeatAlreadyReserved))
	}

	// Double submit of the same booking.
	_, err := f.service.Book(ctx, actor, BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.seats["5A"].ID})
	assert.ErrorIs(t, err, domain.ErrDuplicatePassengerBooking)
	assert.Len(t, f.store.ActiveReservations(f.flight.ID), 2)
}

func TestReservationService_ConcurrentBookSameSeat(t *testing.T) {
	f := newFixture(t).quiet()
	const workers = 16

	passengers := make([]domain.Passenger, workers)
	for i := range passengers {
		passengers[i] = f.store.AddPassenger(domain.Passenger{Passport: "C" + string(rune('A'+i))})
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	admin := domain.Actor{Admin: true}
	for _, p := range passengers {
		wg.Add(1)
		go func(p domain.Passenger) {
			defer wg.Done()
			_, err := f.service.Book(context.Background(), admin,
				BookInput{PassengerID: p.ID, FlightID: f.flight.ID, SeatID: f.seats["5A"].ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, domain.ErrSeatAlreadyReserved):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, rejected)
	assert.Len(t, f.store.ActiveReservations(f.flight.ID), 1)
}

func TestReservationService_ConcurrentBookSamePassenger(t *testing.T) {
	f := newFixture(t).quiet()
	seats := []string{"5A", "5B", "5C", "6A"}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	for _, number := range seats {
		wg.Add(1)
		go func(number string) {
			defer wg.Done()
			_, err := f.service.Book(context.Background(), domain.Actor{UserID: ownerA},
				BookInput{PassengerID: f.passengerA.ID, FlightID: f.flight.ID, SeatID: f.seats[number].ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, domain.ErrDuplicatePassengerBooking):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(number)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, len(seats)-1, rejected)
}

func TestReservationService_CancelReleasesSeat(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	r := f.book(t, f.passengerA, "5A")

	cancelled, err := f.service.Cancel(ctx, domain.Actor{UserID: ownerA}, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Active)

	again := f.book(t, f.passengerB, "5A")
	assert.Equal(t, f.seats["5A"].ID, again.SeatID)

	_, err = f.service.Cancel(ctx, domain.Actor{UserID: ownerA}, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReservationService_CancelledIsTerminal(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	actor := domain.Actor{UserID: ownerA}
	r := f.book(t, f.passengerA, "5A")

	_, err := f.service.Cancel(ctx, actor, r.ID)
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, actor, r.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.service.Reseat(ctx, actor, r.ID, f.seats["5B"].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.service.SetStatus(ctx, actor, r.ID, "cancelled")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReservationService_ConfirmTwiceIssuesOneTicket(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	actor := domain.Actor{UserID: ownerA}
	r := f.book(t, f.passengerA, "5A")

	first, err := f.service.Confirm(ctx, actor, r.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyConfirmed)
	assert.Equal(t, domain.ReservationStatusConfirmed, first.Reservation.Status)
	require.NotNil(t, first.Ticket)
	assert.Empty(t, first.Warning)

	second, err := f.service.Confirm(ctx, actor, r.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyConfirmed)
	assert.Equal(t, first.Ticket.Code, second.Ticket.Code)

	assert.Len(t, f.store.Tickets(r.ID), 1)
	f.producer.AssertNumberOfCalls(t, "Publish", 3)
}

func TestReservationService_ConcurrentConfirm(t *testing.T) {
	f := newFixture(t).quiet()
	r := f.book(t, f.passengerA, "5A")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Confirm(context.Background(), domain.Actor{UserID: ownerA}, r.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.store.Tickets(r.ID), 1)
}

func TestReservationService_FullScenario(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	actor := domain.Actor{UserID: ownerA}

	r := f.book(t, f.passengerA, "5A")
	assert.Equal(t, domain.ReservationStatusPending, r.Status)

	confirmed, err := f.service.Confirm(ctx, actor, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, confirmed.Reservation.Status)
	assert.Len(t, confirmed.Ticket.Code, tickets.CodeLength)

	cancelled, err := f.service.Cancel(ctx, actor, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Active)

	issued := f.store.Tickets(r.ID)
	require.Len(t, issued, 1)
	assert.Equal(t, domain.TicketStatusVoided, issued[0].Status)
	assert.NotNil(t, issued[0].VoidedAt)

	next := f.book(t, f.passengerB, "5A")
	assert.Equal(t, domain.ReservationStatusPending, next.Status)
}

func TestReservationService_ReseatConflictKeepsSeat(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	mine := f.book(t, f.passengerA, "5A")
	f.book(t, f.passengerB, "5B")

	_, err := f.service.Reseat(ctx, domain.Actor{UserID: ownerA}, mine.ID, f.seats["5B"].ID)
	assert.ErrorIs(t, err, domain.ErrSeatAlreadyReserved)

	current, err := f.service.Get(ctx, domain.Actor{UserID: ownerA}, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, f.seats["5A"].ID, current.SeatID)
}

func TestReservationService_Reseat(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	actor := domain.Actor{UserID: ownerA}
	r := f.book(t, f.passengerA, "5A")

	moved, err := f.service.Reseat(ctx, actor, r.ID, f.seats["6A"].ID)
	require.NoError(t, err)
	assert.Equal(t, f.seats["6A"].ID, moved.SeatID)

	// The old seat is free again.
	f.book(t, f.passengerB, "5A")

	_, err = f.service.Reseat(ctx, actor, r.ID, f.foreign.ID)
	assert.ErrorIs(t, err, domain.ErrSeatAircraftMismatch)

	_, err = f.service.Reseat(ctx, domain.Actor{UserID: ownerB}, r.ID, f.seats["5C"].ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	same, err := f.service.Reseat(ctx, actor, r.ID, f.seats["6A"].ID)
	require.NoError(t, err)
	assert.Equal(t, f.seats["6A"].ID, same.SeatID)
}

func TestReservationService_SetStatus(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: ownerA}

	t.Run("confirm", func(t *testing.T) {
		f := newFixture(t).quiet()
		r := f.book(t, f.passengerA, "5A")

		result, err := f.service.SetStatus(ctx, actor, r.ID, "Confirmed")

		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusConfirmed, result.Reservation.Status)
		assert.NotNil(t, result.Ticket)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(t).quiet()
		r := f.book(t, f.passengerA, "5A")

		result, err := f.service.SetStatus(ctx, actor, r.ID, "CANCELLED")

		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCancelled, result.Reservation.Status)
		assert.Nil(t, result.Ticket)
	})

	for _, raw := range []string{"PENDING", "paid", ""} {
		t.Run("rejects "+raw, func(t *testing.T) {
			f := newFixture(t).quiet()
			r := f.book(t, f.passengerA, "5A")

			_, err := f.service.SetStatus(ctx, actor, r.ID, raw)

			assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		})
	}
}

func TestReservationService_NotificationFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.producer.On("Publish", mock.Anything, eventsTopic, mock.Anything, mock.Anything).Return(nil)
	f.producer.On("Publish", mock.Anything, notificationsTopic, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	r := f.book(t, f.passengerA, "5A")
	result, err := f.service.Confirm(ctx, domain.Actor{UserID: ownerA}, r.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, domain.ReservationStatusConfirmed, result.Reservation.Status)

	stored, err := f.service.Get(ctx, domain.Actor{UserID: ownerA}, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, stored.Status)
}

func TestReservationService_NotificationPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.producer.On("Publish", mock.Anything, eventsTopic, mock.Anything, mock.Anything).Return(nil)
	f.producer.On("Publish", mock.Anything, notificationsTopic, mock.Anything, mock.MatchedBy(func(n kafka.TicketNotification) bool {
		return n.Email == "lucia@example.com" && n.PassengerName == "Lucia Perez" && len(n.TicketCode) == tickets.CodeLength
	})).Return(nil).Once()

	r := f.book(t, f.passengerA, "5A")
	result, err := f.service.Confirm(ctx, domain.Actor{UserID: ownerA}, r.ID)

	require.NoError(t, err)
	assert.Empty(t, result.Warning)
	f.producer.AssertExpectations(t)
}

func TestReservationService_EventFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	r := f.book(t, f.passengerA, "5A")

	assert.Equal(t, domain.ReservationStatusPending, r.Status)
}

func TestReservationService_GetAndList(t *testing.T) {
	f := newFixture(t).quiet()
	ctx := context.Background()
	mine := f.book(t, f.passengerA, "5A")
	f.book(t, f.passengerB, "5B")

	_, err := f.service.Get(ctx, domain.Actor{UserID: ownerB}, mine.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.service.Get(ctx, domain.Actor{UserID: ownerA}, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	own, err := f.service.List(ctx, domain.Actor{UserID: ownerA})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := f.service.List(ctx, domain.Actor{Admin: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
