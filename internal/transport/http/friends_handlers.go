package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/service/friends"
	"github.com/dicode-app/dicode-server/internal/store"
)

// FriendHandlers provides HTTP handlers for friend endpoints.
type FriendHandlers struct {
	service *friends.Service
	store   store.Store
	log     *zerolog.Logger
}

// NewFriendHandlers creates a new friend handlers instance.
func NewFriendHandlers(service *friends.Service, st store.Store, logger *zerolog.Logger) *FriendHandlers {
	return &FriendHandlers{
		service: service,
		store:   st,
		log:     logger,
	}
}

// FriendEntryResponse is one friend-list item.
type FriendEntryResponse struct {
	User   UserResponse `json:"user"`
	Status string       `json:"status"`
}

// FriendListResponse is the friend-list payload consumed by the room
// flow's ancillary UI. Failures degrade to a fixed failure result so
// the room flow is never broken by this endpoint.
type FriendListResponse struct {
	Success bool                  `json:"success"`
	Status  int                   `json:"status"`
	Message string                `json:"message,omitempty"`
	Data    []FriendEntryResponse `json:"data,omitempty"`
}

func friendListFailure() FriendListResponse {
	return FriendListResponse{
		Success: false,
		Status:  400,
		Message: "Something went wrong",
	}
}

// List returns the user's friends.
// GET /api/friends
func (h *FriendHandlers) List(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var statusFilter *store.FriendStatus
	if s := c.Query("status"); s != "" {
		fs := store.FriendStatus(s)
		statusFilter = &fs
	}

	entries, err := h.service.List(c.Request.Context(), uid, statusFilter)
	if err != nil {
		// Ancillary data: degrade to the fixed failure result.
		h.log.Warn().Err(err).Int64("user_id", uid).Msg("friend list degraded")
		c.JSON(http.StatusOK, friendListFailure())
		return
	}

	data := make([]FriendEntryResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, FriendEntryResponse{
			User: UserResponse{
				ID:       e.User.ID,
				Username: e.User.Username,
				Name:     e.User.DisplayName,
				Avatar:   e.User.AvatarURL,
			},
			Status: string(e.Status),
		})
	}

	c.JSON(http.StatusOK, FriendListResponse{Success: true, Status: 200, Data: data})
}

// SendRequest sends a friend request to the named user.
// POST /api/friends/:username
func (h *FriendHandlers) SendRequest(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	target, err := h.store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	if _, err := h.service.SendRequest(c.Request.Context(), uid, target.ID); err != nil {
		switch {
		case errors.Is(err, friends.ErrCannotFriendSelf):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot friend yourself"})
		case errors.Is(err, friends.ErrAlreadyFriends):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "already friends"})
		case errors.Is(err, friends.ErrRequestAlreadyExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "request already exists"})
		default:
			h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to send friend request")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.Status(http.StatusCreated)
}

// AcceptRequest accepts a pending friend request from the named user.
// POST /api/friends/:username/accept
func (h *FriendHandlers) AcceptRequest(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	from, err := h.store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	if err := h.service.AcceptRequest(c.Request.Context(), uid, from.ID); err != nil {
		if errors.Is(err, friends.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "request not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to accept friend request")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveFriend removes a friendship or pending request.
// DELETE /api/friends/:username
func (h *FriendHandlers) RemoveFriend(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	target, err := h.store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	if err := h.service.RemoveFriend(c.Request.Context(), uid, target.ID); err != nil {
		if errors.Is(err, friends.ErrRequestNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "friendship not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to remove friend")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}
