package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isa-florenville/focustime-api/internal/middleware"
	"github.com/isa-florenville/focustime-api/internal/service"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
	"github.com/isa-florenville/focustime-api/pkg/response"
)

// SessionHandler exposes the authenticated session descriptor.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get godoc
// @Summary Describe the authenticated session
// @Description Identity, resolved degree and role, window states and existing registrations
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.sessions.Detail(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
