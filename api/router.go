package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/airticketing/internal/service/airports"
	"github.com/Domenick1991/airticketing/internal/service/flights"
	"github.com/Domenick1991/airticketing/internal/service/passengers"
	"github.com/Domenick1991/airticketing/internal/service/reservation"
	"github.com/Domenick1991/airticketing/internal/service/seatmap"
	"github.com/Domenick1991/airticketing/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type Services struct {
	SeatMap      seatmap.SeatMapUseCase
	Airports     airports.AirportUseCase
	Flights      flights.FlightUseCase
	Passengers   passengers.PassengerUseCase
	Reservations reservation.ReservationUseCase
	Tickets      tickets.TicketUseCase
}

// NewRouter builds the REST engine. Everything under /api/v1 requires a
// bearer token.
func NewRouter(svc Services, auth *TokenAuth, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1", auth.Middleware())
	NewAircraftHandler(svc.SeatMap, logger).Register(v1.Group("/aircraft"))
	NewAirportHandler(svc.Airports, logger).Register(v1.Group("/airports"))
	NewFlightHandler(svc.Flights, svc.SeatMap, logger).Register(v1.Group("/flights"))
	NewPassengerHandler(svc.Passengers, logger).Register(v1.Group("/passengers"))
	NewReservationHandler(svc.Reservations, svc.Tickets, logger).Register(v1.Group("/reservations"))
	NewTicketHandler(svc.Tickets, logger).Register(v1.Group("/tickets"))

	return router
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"user_id", actorFrom(c).UserID,
		)
	}
}
