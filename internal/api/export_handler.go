package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldservice-timesheet-api/internal/csvio"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?resource=...&technician_id=...
// Writes the CSV document straight to the response.
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	resource := c.Query("resource")
	if resource == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource parameter is required (missions, roster)"})
		return
	}
	if resource != models.ResourceMissions && resource != models.ResourceRoster {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be one of: missions, roster"})
		return
	}

	h.log.Info().Str("resource", resource).Msg("Starting export")

	var (
		doc string
		err error
	)
	switch resource {
	case models.ResourceMissions:
		doc, err = h.services.Export.ExportMissions(ctx, c.Query("technician_id"))
	case models.ResourceRoster:
		doc, err = h.services.Export.ExportRoster(ctx)
	}

	if err != nil {
		if errors.Is(err, csvio.ErrNothingToExport) {
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing to export"})
			return
		}
		h.log.Error().Err(err).Str("resource", resource).Msg("Export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", resource, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.String(http.StatusOK, doc)
}
