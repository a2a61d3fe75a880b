package api

import (
	"log/slog"
	"net/http"

	"github.com/Domenick1991/airticketing/internal/service/seatmap"
	"github.com/gin-gonic/gin"
)

type AircraftHandler struct {
	service seatmap.SeatMapUseCase
	log     *slog.Logger
}

func NewAircraftHandler(service seatmap.SeatMapUseCase, logger *slog.Logger) *AircraftHandler {
	return &AircraftHandler{service: service, log: logger}
}

func (h *AircraftHandler) Register(router *gin.RouterGroup) {
	router.POST("", RequireAdmin(), h.create)
	router.PUT("/:id", RequireAdmin(), h.update)
	router.GET("/:id/seats", h.seats)
	router.GET("/:id/seats/:seat_id", h.seat)
}

func (h *AircraftHandler) create(c *gin.Context) {
	var req seatmap.AircraftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	layout, err := h.service.CreateAircraft(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, layout)
}

func (h *AircraftHandler) update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req seatmap.AircraftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	layout, err := h.service.UpdateAircraft(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (h *AircraftHandler) seats(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	seats, err := h.service.SeatsOf(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, seats)
}

func (h *AircraftHandler) seat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	seatID, ok := idParam(c, "seat_id")
	if !ok {
		return
	}
	seat, err := h.service.Seat(c.Request.Context(), id, seatID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, seat)
}
