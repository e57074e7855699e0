package api

import (
	"errors"
	"net/http"

	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHandler handles roster endpoints
type UserHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(services *service.Services, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		services: services,
		log:      log.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	people, err := h.services.Roster.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": people, "count": len(people)})
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	p, err := h.services.Roster.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Upsert handles POST /v1/users and PUT /v1/users/:id. The password is
// accepted on write but never echoed back.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req struct {
		models.Person
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user payload"})
		return
	}

	p := req.Person
	p.Password = req.Password
	if id := c.Param("id"); id != "" {
		p.ID = id
	}

	if err := h.services.Roster.Upsert(c.Request.Context(), &p); err != nil {
		h.log.Error().Err(err).Str("user_id", p.ID).Msg("Failed to save user")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Roster.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrAdminProtected) {
			c.JSON(http.StatusForbidden, gin.H{"error": "the admin account cannot be deleted"})
			return
		}
		h.log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
