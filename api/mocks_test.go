package api

import (
	"context"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/repository"
	"github.com/Domenick1991/airticketing/internal/service/flights"
	"github.com/Domenick1991/airticketing/internal/service/reservation"
	"github.com/Domenick1991/airticketing/internal/service/seatmap"
	"github.com/stretchr/testify/mock"
)

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Book(ctx context.Context, actor domain.Actor, input reservation.BookInput) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Reseat(ctx context.Context, actor domain.Actor, reservationID, seatID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, reservationID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) Confirm(ctx context.Context, actor domain.Actor, reservationID int64) (*reservation.ConfirmResult, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.ConfirmResult), args.Error(1)
}

func (m *MockReservationUseCase) Cancel(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) SetStatus(ctx context.Context, actor domain.Actor, reservationID int64, raw string) (*reservation.ConfirmResult, error) {
	args := m.Called(ctx, actor, reservationID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.ConfirmResult), args.Error(1)
}

func (m *MockReservationUseCase) Get(ctx context.Context, actor domain.Actor, reservationID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationUseCase) List(ctx context.Context, actor domain.Actor) ([]domain.Reservation, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Filter(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) RefreshStatus(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.FlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) SetStatus(ctx context.Context, id int64, raw string) (*domain.Flight, error) {
	args := m.Called(ctx, id, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) Issue(ctx context.Context, reservationID int64) (*domain.Ticket, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketUseCase) Void(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketUseCase) GetByCode(ctx context.Context, actor domain.Actor, code string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketUseCase) ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

type MockSeatMapUseCase struct {
	mock.Mock
}

func (m *MockSeatMapUseCase) CreateAircraft(ctx context.Context, input seatmap.AircraftInput) (*seatmap.AircraftLayout, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.AircraftLayout), args.Error(1)
}

func (m *MockSeatMapUseCase) UpdateAircraft(ctx context.Context, id int64, input seatmap.AircraftInput) (*seatmap.AircraftLayout, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.AircraftLayout), args.Error(1)
}

func (m *MockSeatMapUseCase) SeatsOf(ctx context.Context, aircraftID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, aircraftID)
	return args.Get(0).([]domain.Seat), args.Error(1)
}

func (m *MockSeatMapUseCase) Seat(ctx context.Context, aircraftID, seatID int64) (*domain.Seat, error) {
	args := m.Called(ctx, aircraftID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seat), args.Error(1)
}

func (m *MockSeatMapUseCase) FlightSeatMap(ctx context.Context, flightID int64) (*seatmap.FlightSeatMap, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.FlightSeatMap), args.Error(1)
}
