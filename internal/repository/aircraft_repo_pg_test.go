package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestSeatDeleteError(t *testing.T) {
	raced := &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "reservations_seat_id_fkey"}

	err := seatDeleteError(fmt.Errorf("exec: %w", raced))
	assert.ErrorIs(t, err, domain.ErrSeatsInUse)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	other := errors.New("connection reset")
	assert.Same(t, other, seatDeleteError(other))

	assert.ErrorIs(t, seatDeleteError(&pgconn.PgError{Code: codeCheckViolation}), domain.ErrValidation)
}
