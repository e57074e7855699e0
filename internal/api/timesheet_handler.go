package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TimesheetHandler handles mission and weekly view endpoints
type TimesheetHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewTimesheetHandler creates a new TimesheetHandler
func NewTimesheetHandler(services *service.Services, log zerolog.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		services: services,
		log:      log.With().Str("handler", "timesheet").Logger(),
	}
}

// GetWeek handles GET /v1/timesheets/:technician_id?year=&week=
// Year and week default to the current ISO week.
func (h *TimesheetHandler) GetWeek(c *gin.Context) {
	technicianID := c.Param("technician_id")

	nowYear, nowWeek := time.Now().ISOWeek()
	year, err := intQuery(c, "year", nowYear)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
		return
	}
	week, err := intQuery(c, "week", nowWeek)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "week must be a number"})
		return
	}

	view, err := h.services.Timesheet.WeekView(c.Request.Context(), technicianID, year, week)
	if err != nil {
		h.log.Error().Err(err).Str("technician_id", technicianID).Msg("Failed to build week view")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build week view"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListMissions handles GET /v1/missions
func (h *TimesheetHandler) ListMissions(c *gin.Context) {
	missions, err := h.services.Timesheet.ListMissions(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list missions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list missions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"missions": missions, "count": len(missions)})
}

// CreateMission handles POST /v1/missions
func (h *TimesheetHandler) CreateMission(c *gin.Context) {
	var m models.Mission
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission payload"})
		return
	}
	if m.ID == "" || m.TechnicianID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and technician_id are required"})
		return
	}

	if err := h.services.Timesheet.CreateMission(c.Request.Context(), &m); err != nil {
		h.log.Error().Err(err).Str("mission_id", m.ID).Msg("Failed to create mission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create mission"})
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GetMission handles GET /v1/missions/:id
func (h *TimesheetHandler) GetMission(c *gin.Context) {
	m, err := h.services.Timesheet.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get mission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get mission"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateMission handles PUT /v1/missions/:id
func (h *TimesheetHandler) UpdateMission(c *gin.Context) {
	var m models.Mission
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission payload"})
		return
	}
	m.ID = c.Param("id")

	updated, err := h.services.Timesheet.UpdateMission(c.Request.Context(), &m)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
		case errors.Is(err, service.ErrMissionLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "mission is locked"})
		default:
			h.log.Error().Err(err).Str("mission_id", m.ID).Msg("Failed to update mission")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update mission"})
		}
		return
	}
	c.JSON(http.StatusOK, updated)
}

// SetStatus handles PUT /v1/missions/:id/status
func (h *TimesheetHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status models.MissionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	m, err := h.services.Timesheet.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "mission not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMission handles DELETE /v1/missions/:id
func (h *TimesheetHandler) DeleteMission(c *gin.Context) {
	if err := h.services.Timesheet.DeleteMission(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error().Err(err).Msg("Failed to delete mission")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete mission"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// intQuery parses an optional integer query parameter
func intQuery(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
