package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/core"
	"github.com/dicode-app/dicode-server/internal/store"
)

// RoomHandlers provides HTTP handlers for room catalog endpoints.
type RoomHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatorID int64  `json:"creator_id"`
	CreatedAt string `json:"created_at"`
}

// MemberResponse represents a live member in the room detail response.
type MemberResponse struct {
	User UserResponse `json:"user"`
	Role string       `json:"role"`
}

// RoomDetailResponse is the room loader payload: the catalog record,
// the creator's identity, and the current live members.
type RoomDetailResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Creator UserResponse     `json:"creator"`
	Members []MemberResponse `json:"members"`
}

// CreateRoom handles room creation.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	room, err := h.store.CreateRoom(c.Request.Context(), uuid.NewString(), req.Name, uid)
	if err != nil {
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Int64("creator_id", uid).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// ListRooms lists rooms created by the authenticated user.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	rooms, err := h.store.ListRoomsByCreator(c.Request.Context(), uid)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", uid).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, roomResponse(room))
	}

	c.JSON(http.StatusOK, response)
}

// GetRoom returns the room detail used by the room entry flow: the
// catalog record plus the live member set from the hub.
// GET /api/rooms/:id
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.store.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	creator, err := h.store.GetUserByID(c.Request.Context(), room.CreatorID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room creator")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	members := make([]MemberResponse, 0)
	for _, m := range h.hub.Members(roomID) {
		members = append(members, MemberResponse{
			User: UserResponse{
				ID:       m.User.ID,
				Username: m.User.Username,
				Name:     m.User.Name,
				Avatar:   m.User.Avatar,
			},
			Role: string(m.Role),
		})
	}

	c.JSON(http.StatusOK, RoomDetailResponse{
		ID:   room.ID,
		Name: room.Name,
		Creator: UserResponse{
			ID:       creator.ID,
			Username: creator.Username,
			Name:     creator.DisplayName,
			Avatar:   creator.AvatarURL,
		},
		Members: members,
	})
}

// DeleteRoom removes a room from the catalog (creator only).
// DELETE /api/rooms/:id
func (h *RoomHandlers) DeleteRoom(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	roomID := c.Param("id")
	room, err := h.store.GetRoomByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to load room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if room.CreatorID != uid {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the creator can delete a room"})
		return
	}

	if err := h.store.DeleteRoom(c.Request.Context(), roomID); err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("failed to delete room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatorID: room.CreatorID,
		CreatedAt: room.CreatedAt.Format(time.RFC3339),
	}
}
