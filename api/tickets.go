package api

import (
	"log/slog"
	"net/http"

	"github.com/Domenick1991/airticketing/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
	log     *slog.Logger
}

func NewTicketHandler(service tickets.TicketUseCase, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{service: service, log: logger}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/code/:code", h.byCode)
	router.POST("/:id/void", RequireAdmin(), h.void)
}

func (h *TicketHandler) list(c *gin.Context) {
	list, err := h.service.ListForUser(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TicketHandler) byCode(c *gin.Context) {
	ticket, err := h.service.GetByCode(c.Request.Context(), actorFrom(c), c.Param("code"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) void(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ticket, err := h.service.Void(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
