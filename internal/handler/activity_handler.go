package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isa-florenville/focustime-api/internal/middleware"
	"github.com/isa-florenville/focustime-api/internal/service"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
	"github.com/isa-florenville/focustime-api/pkg/response"
)

// ActivityHandler exposes the per-student activity sections.
type ActivityHandler struct {
	sessions *service.SessionService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(sessions *service.SessionService) *ActivityHandler {
	return &ActivityHandler{sessions: sessions}
}

// List godoc
// @Summary List activity sections with live seat availability
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sections, err := h.sessions.Sections(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections)
}
