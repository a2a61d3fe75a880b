package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Domenick1991/airticketing/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorKind struct {
	err    error
	status int
	code   string
}

var errorKinds = []errorKind{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{domain.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{domain.ErrSeatAircraftMismatch, http.StatusUnprocessableEntity, "seat_aircraft_mismatch"},
	{domain.ErrFlightCancelled, http.StatusUnprocessableEntity, "flight_cancelled"},
	{domain.ErrDuplicatePassengerBooking, http.StatusConflict, "duplicate_passenger_booking"},
	{domain.ErrSeatAlreadyReserved, http.StatusConflict, "seat_already_reserved"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrDuplicateTicket, http.StatusConflict, "duplicate_ticket"},
	{domain.ErrSeatsInUse, http.StatusConflict, "seats_in_use"},
	{domain.ErrPassengerExists, http.StatusConflict, "passenger_exists"},
	{domain.ErrAirportExists, http.StatusConflict, "airport_exists"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError maps domain errors to HTTP responses. Anything unknown is
// logged and reported as an internal error without details.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			c.JSON(k.status, errorResponse{Error: k.code, Message: err.Error()})
			return
		}
	}
	logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

// idParam parses a positive integer path parameter and writes a 400 when it
// is malformed.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
