package api

import (
	"log/slog"
	"net/http"

	"github.com/Domenick1991/airticketing/internal/service/passengers"
	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
	log     *slog.Logger
}

func NewPassengerHandler(service passengers.PassengerUseCase, logger *slog.Logger) *PassengerHandler {
	return &PassengerHandler{service: service, log: logger}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *PassengerHandler) create(c *gin.Context) {
	var req passengers.PassengerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.service.Register(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PassengerHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PassengerHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
