package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/Domenick1991/airticketing/internal/kafka"
	"github.com/Domenick1991/airticketing/internal/repository"
	"github.com/google/uuid"
)

// CodeLength is the number of hex characters in a ticket code.
const CodeLength = 12

type TicketUseCase interface {
	Issue(ctx context.Context, reservationID int64) (*domain.Ticket, error)
	Void(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	GetByCode(ctx context.Context, actor domain.Actor, code string) (*domain.Ticket, error)
	ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Option func(*Issuer)

// WithEvents publishes ticket_issued and ticket_voided for direct Issue and
// Void calls.
func WithEvents(producer Producer, topic string) Option {
	return func(i *Issuer) {
		i.producer = producer
		i.eventsTopic = topic
	}
}

// WithCodeGenerator replaces the random code source.
func WithCodeGenerator(gen func() string) Option {
	return func(i *Issuer) { i.newCode = gen }
}

func WithCodeAttempts(n int) Option {
	return func(i *Issuer) {
		if n > 0 {
			i.attempts = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

type Issuer struct {
	ledger       repository.Ledger
	tickets      repository.TicketRepository
	reservations repository.ReservationRepository
	newCode      func() string
	attempts     int
	now          func() time.Time
	producer     Producer
	eventsTopic  string
	log          *slog.Logger
}

func NewIssuer(
	ledger repository.Ledger,
	tickets repository.TicketRepository,
	reservations repository.ReservationRepository,
	logger *slog.Logger,
	opts ...Option,
) *Issuer {
	i := &Issuer{
		ledger:       ledger,
		tickets:      tickets,
		reservations: reservations,
		newCode:      NewCode,
		attempts:     5,
		now:          time.Now,
		log:          logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewCode returns the first twelve hex digits of a random UUID, upper-cased.
func NewCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:CodeLength])
}

func (i *Issuer) Issue(ctx context.Context, reservationID int64) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := i.ledger.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		reservation, err := tx.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		ticket, err = i.IssueInTx(ctx, tx, reservation)
		return err
	})
	if err != nil {
		return nil, err
	}
	i.publish(ctx, kafka.EventTicketIssued, ticket)
	return ticket, nil
}

// IssueInTx issues the ticket of a confirmed reservation inside the caller's
// transaction. The reservation row must already be locked by the caller.
func (i *Issuer) IssueInTx(ctx context.Context, tx repository.LedgerTx, reservation *domain.Reservation) (*domain.Ticket, error) {
	if reservation.Status != domain.ReservationStatusConfirmed {
		return nil, fmt.Errorf("%w: reservation %d is %s", domain.ErrInvalidTransition, reservation.ID, reservation.Status)
	}

	existing, err := tx.TicketByReservation(ctx, reservation.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: reservation %d has ticket %s", domain.ErrDuplicateTicket, reservation.ID, existing.Code)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	for attempt := 1; attempt <= i.attempts; attempt++ {
		ticket := &domain.Ticket{
			ReservationID: reservation.ID,
			Code:          i.newCode(),
			Status:        domain.TicketStatusIssued,
		}
		err := tx.InsertTicket(ctx, ticket)
		if errors.Is(err, repository.ErrTicketCodeTaken) {
			i.log.Warn("ticket code collision", "reservation_id", reservation.ID, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		i.log.Info("ticket issued", "reservation_id", reservation.ID, "ticket_id", ticket.ID, "code", ticket.Code)
		return ticket, nil
	}
	return nil, fmt.Errorf("%w: no free ticket code after %d attempts", domain.ErrConflict, i.attempts)
}

func (i *Issuer) Void(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := i.ledger.InTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		current, err := tx.TicketForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		ticket, err = i.VoidInTx(ctx, tx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	i.publish(ctx, kafka.EventTicketVoided, ticket)
	return ticket, nil
}

// VoidInTx voids the ticket inside the caller's transaction. An already
// voided ticket is returned unchanged.
func (i *Issuer) VoidInTx(ctx context.Context, tx repository.LedgerTx, ticket *domain.Ticket) (*domain.Ticket, error) {
	if ticket.Status == domain.TicketStatusVoided {
		return ticket, nil
	}
	voided, err := tx.VoidTicket(ctx, ticket.ID, i.now().UTC())
	if err != nil {
		return nil, err
	}
	i.log.Info("ticket voided", "ticket_id", voided.ID, "reservation_id", voided.ReservationID)
	return voided, nil
}

func (i *Issuer) GetByCode(ctx context.Context, actor domain.Actor, code string) (*domain.Ticket, error) {
	ticket, err := i.tickets.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	owner, err := i.reservations.OwnerOf(ctx, ticket.ReservationID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(owner) {
		return nil, domain.ErrForbidden
	}
	return ticket, nil
}

func (i *Issuer) ListForUser(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	if actor.Admin {
		return i.tickets.ListAll(ctx)
	}
	return i.tickets.ListByUser(ctx, actor.UserID)
}

func (i *Issuer) publish(ctx context.Context, eventType string, t *domain.Ticket) {
	if i.producer == nil || i.eventsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: t.ReservationID,
		Status:        string(t.Status),
		TicketCode:    t.Code,
		OccurredAt:    i.now().UTC(),
	}
	if err := i.producer.Publish(ctx, i.eventsTopic, strconv.FormatInt(t.ReservationID, 10), event); err != nil {
		i.log.Warn("failed to publish ticket event", "type", eventType, "ticket_id", t.ID, "error", err)
	}
}

var _ TicketUseCase = (*Issuer)(nil)
