package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/isa-florenville/focustime-api/internal/middleware"
	"github.com/isa-florenville/focustime-api/internal/service"
	appErrors "github.com/isa-florenville/focustime-api/pkg/errors"
	"github.com/isa-florenville/focustime-api/pkg/response"
)

// TeacherHandler exposes the staff endpoints: manual enrollment, rosters
// and exports.
type TeacherHandler struct {
	registrations *service.RegistrationService
	rosters       *service.RosterService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(registrations *service.RegistrationService, rosters *service.RosterService) *TeacherHandler {
	return &TeacherHandler{registrations: registrations, rosters: rosters}
}

// Enroll godoc
// @Summary Manually enroll a student into one or more activities
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TeacherEnrollRequest true "Enrollment"
// @Success 200 {object} response.Envelope
// @Router /teacher/enrollments [post]
func (h *TeacherHandler) Enroll(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.TeacherEnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	outcomes, err := h.registrations.TeacherEnroll(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcomes)
}

// Rosters godoc
// @Summary List registrations grouped by activity
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/rosters [get]
func (h *TeacherHandler) Rosters(c *gin.Context) {
	groups, err := h.rosters.GroupedRosters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups)
}

// Export godoc
// @Summary Export all rosters as CSV or PDF
// @Tags Teacher
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /teacher/rosters/export [get]
func (h *TeacherHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("rosters_%s", time.Now().Format("2006-01-02"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := h.rosters.ExportCSV(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := h.rosters.ExportPDF(c.Request.Context(), "Listes d'inscription")
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", filename))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}

// Students godoc
// @Summary List directory emails for the enrollment picker
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /teacher/students [get]
func (h *TeacherHandler) Students(c *gin.Context) {
	emails, err := h.rosters.StudentEmails(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emails)
}
