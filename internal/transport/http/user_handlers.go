package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/store"
)

// UserHandlers provides HTTP handlers for user lookup endpoints.
type UserHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.Store, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		log:   logger,
	}
}

// Search finds users by username prefix.
// GET /api/users/search?q=<prefix>
func (h *UserHandlers) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter q is required"})
		return
	}

	users, err := h.store.SearchUsers(c.Request.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("user search failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			Name:     u.DisplayName,
			Avatar:   u.AvatarURL,
			IsGuest:  u.IsGuest,
		})
	}

	c.JSON(http.StatusOK, results)
}
