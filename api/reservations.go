package api

import (
	"log/slog"
	"net/http"

	"github.com/Domenick1991/airticketing/internal/service/reservation"
	"github.com/Domenick1991/airticketing/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
	tickets tickets.TicketUseCase
	log     *slog.Logger
}

type reseatRequest struct {
	SeatID int64 `json:"seat_id" binding:"required"`
}

type reservationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func NewReservationHandler(service reservation.ReservationUseCase, ticketSvc tickets.TicketUseCase, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{service: service, tickets: ticketSvc, log: logger}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id/seat", h.reseat)
	router.PATCH("/:id/status", h.setStatus)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/ticket", RequireAdmin(), h.issueTicket)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req reservation.BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.service.Book(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReservationHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) reseat(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reseatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.service.Reseat(c.Request.Context(), actorFrom(c), id, req.SeatID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) setStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.service.SetStatus(c.Request.Context(), actorFrom(c), id, req.Status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReservationHandler) confirm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Confirm(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Cancel(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) issueTicket(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ticket, err := h.tickets.Issue(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}
