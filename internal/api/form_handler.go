package api

import (
	"net/http"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// FormHandler handles form template and response endpoints
type FormHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(services *service.Services, log zerolog.Logger) *FormHandler {
	return &FormHandler{
		services: services,
		log:      log.With().Str("handler", "form").Logger(),
	}
}

// ListTemplates handles GET /v1/forms/templates
func (h *FormHandler) ListTemplates(c *gin.Context) {
	templates, err := h.services.Form.ListTemplates(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list templates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

// SaveTemplate handles POST /v1/forms/templates and PUT /v1/forms/templates/:id
func (h *FormHandler) SaveTemplate(c *gin.Context) {
	var t models.FormTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template payload"})
		return
	}
	if id := c.Param("id"); id != "" {
		t.ID = id
	}

	if err := h.services.Form.SaveTemplate(c.Request.Context(), &t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetTemplate handles GET /v1/forms/templates/:id
func (h *FormHandler) GetTemplate(c *gin.Context) {
	t, err := h.services.Form.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get template"})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTemplate handles DELETE /v1/forms/templates/:id
func (h *FormHandler) DeleteTemplate(c *gin.Context) {
	if err := h.services.Form.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error().Err(err).Msg("Failed to delete template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete template"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListResponses handles GET /v1/forms/responses?template_id=&mission_id=
func (h *FormHandler) ListResponses(c *gin.Context) {
	responses, err := h.services.Form.ListResponses(c.Request.Context(),
		c.Query("template_id"), c.Query("mission_id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list responses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list responses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses, "count": len(responses)})
}

// SaveResponse handles POST /v1/forms/responses
func (h *FormHandler) SaveResponse(c *gin.Context) {
	var r models.FormResponse
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid response payload"})
		return
	}

	if err := h.services.Form.SaveResponse(c.Request.Context(), &r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetResponse handles GET /v1/forms/responses/:id
func (h *FormHandler) GetResponse(c *gin.Context) {
	r, err := h.services.Form.GetResponse(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get response"})
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "response not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteResponse handles DELETE /v1/forms/responses/:id
func (h *FormHandler) DeleteResponse(c *gin.Context) {
	if err := h.services.Form.DeleteResponse(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error().Err(err).Msg("Failed to delete response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete response"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
