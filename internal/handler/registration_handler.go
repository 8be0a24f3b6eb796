package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isa-florenville/focustime-api/internal/middleware"
	"github.com/isa-florenville/focustime-api/internal/service"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
	"github.com/isa-florenville/focustime-api/pkg/response"
)

// RegistrationHandler exposes the student self-service registration
// endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	sessions      *service.SessionService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService, sessions *service.SessionService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, sessions: sessions}
}

// Create godoc
// @Summary Register the authenticated student for an activity
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SelfRegisterRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SelfRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	registration, err := h.registrations.SelfRegister(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// ListOwn godoc
// @Summary List the authenticated student's registrations
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) ListOwn(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	views, err := h.sessions.OwnRegistrations(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views)
}
