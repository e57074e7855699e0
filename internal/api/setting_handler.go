package api

import (
	"net/http"

	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SettingHandler handles key/value settings endpoints
type SettingHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(services *service.Services, log zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		services: services,
		log:      log.With().Str("handler", "setting").Logger(),
	}
}

// All handles GET /v1/settings
func (h *SettingHandler) All(c *gin.Context) {
	settings, err := h.services.Setting.All(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// Get handles GET /v1/settings/:key
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.services.Setting.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get setting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get setting"})
		return
	}
	if setting == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		return
	}
	c.JSON(http.StatusOK, setting)
}

// Set handles PUT /v1/settings/:key
func (h *SettingHandler) Set(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid setting payload"})
		return
	}

	key := c.Param("key")
	if err := h.services.Setting.Set(c.Request.Context(), key, req.Value); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to save setting")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
