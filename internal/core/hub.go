package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/dicode-app/dicode-server/internal/store"
)

// Catalog is the slice of persistent storage the hub needs: resolving
// a room id to its record and a creator id to a user.
type Catalog interface {
	GetRoomByID(ctx context.Context, id string) (*store.Room, error)
	GetUserByID(ctx context.Context, id int64) (*store.User, error)
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

type membersQuery struct {
	roomID string
	reply  chan []Member
}

type pendingQuery struct {
	roomID string
	reply  chan []UserRef
}

// Hub owns all live room sessions. A single run loop consumes client
// commands, so mutations for any room never interleave partially.
type Hub struct {
	catalog Catalog
	log     *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	membersQ   chan membersQuery
	pendingQ   chan pendingQuery

	sessions map[string]*roomSession
}

// NewHub creates a new coordination hub instance.
func NewHub(catalog Catalog, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		catalog:    catalog,
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		membersQ:   make(chan membersQuery),
		pendingQ:   make(chan pendingQuery),
		sessions:   make(map[string]*roomSession),
	}
}

// RegisterClient attaches a connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient detaches a connection; the hub converts the
// disconnect into membership or pending-request cleanup.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Members returns a snapshot of the live member set for a room, or
// nil if no session is active. Served by the hub loop.
func (h *Hub) Members(roomID string) []Member {
	reply := make(chan []Member, 1)
	h.membersQ <- membersQuery{roomID: roomID, reply: reply}
	return <-reply
}

// PendingRequests returns a snapshot of outstanding join requests for
// a room, or nil if no session is active.
func (h *Hub) PendingRequests(roomID string) []UserRef {
	reply := make(chan []UserRef, 1)
	h.pendingQ <- pendingQuery{roomID: roomID, reply: reply}
	return <-reply
}

// Run processes hub traffic until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.startClient(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		case q := <-h.membersQ:
			if rs, ok := h.sessions[q.roomID]; ok {
				q.reply <- rs.members.List()
			} else {
				q.reply <- nil
			}
		case q := <-h.pendingQ:
			if rs, ok := h.sessions[q.roomID]; ok {
				q.reply <- rs.pending.List()
			} else {
				q.reply <- nil
			}
		}
	}
}

// startClient pumps the connection's commands into the hub loop.
func (h *Hub) startClient(ctx context.Context, c *Client) {
	go func() {
		for {
			select {
			case cmd, ok := <-c.Commands:
				if !ok {
					return
				}
				select {
				case h.commands <- clientCommand{client: c, cmd: cmd}:
				case <-c.done:
					return
				case <-ctx.Done():
					return
				}
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandRegister:
		h.handleRegister(ctx, c, cmd.RoomID)
	case CommandJoinRequest:
		h.handleJoinRequest(c)
	case CommandAcceptJoin:
		h.handleAcceptJoin(c, cmd.User)
	case CommandRejectJoin:
		h.handleRejectJoin(c, cmd.UserID)
	case CommandKick:
		h.handleKick(c, cmd.UserID)
	case CommandSetRole:
		h.handleSetRole(c, cmd.UserID, cmd.Role)
	case CommandContentChange:
		h.handleContentChange(c, cmd)
	case CommandNeedLatestContent:
		h.handleNeedLatestContent(c)
	default:
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

// handleRegister binds the connection to a room session, creating the
// session from the catalog on first use.
func (h *Hub) handleRegister(ctx context.Context, c *Client, roomID string) {
	if roomID == "" {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "room id is required")})
		return
	}

	rs, ok := h.sessions[roomID]
	if !ok {
		room, err := h.catalog.GetRoomByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Terminal for this client: redirect away.
				c.send(&Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeRoomNotFound, "room not found")})
				c.send(&Event{Kind: EventNavigateAway, RoomID: roomID})
				return
			}
			h.log.Error().Err(err).Str("room_id", roomID).Msg("load room")
			c.send(&Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeBadRequest, "failed to load room")})
			return
		}

		creator, err := h.catalog.GetUserByID(ctx, room.CreatorID)
		if err != nil {
			h.log.Error().Err(err).Str("room_id", roomID).Int64("creator_id", room.CreatorID).Msg("load room creator")
			c.send(&Event{Kind: EventError, RoomID: roomID, Error: coreError(ErrCodeBadRequest, "failed to load room")})
			return
		}

		rs = newRoomSession(room.ID, room.Name, UserRef{
			ID:       creator.ID,
			Username: creator.Username,
			Name:     creator.DisplayName,
			Avatar:   creator.AvatarURL,
		})
		h.sessions[roomID] = rs
		h.log.Info().Str("room_id", roomID).Str("room_name", room.Name).Msg("room session started")
	}

	// Re-registering to another room detaches from the old one first.
	if c.RoomID != "" && c.RoomID != roomID {
		h.detach(c)
	}

	c.RoomID = roomID
	rs.clients[c] = struct{}{}
	h.log.Debug().Str("room_id", roomID).Str("conn_id", c.ConnID).Int64("user_id", c.User.ID).Msg("client registered")
}

// sessionOf resolves the session a client is registered to, emitting
// an error event if there is none.
func (h *Hub) sessionOf(c *Client) *roomSession {
	if c.RoomID == "" {
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeNotRegistered, "register to a room first")})
		return nil
	}
	rs, ok := h.sessions[c.RoomID]
	if !ok {
		c.send(&Event{Kind: EventError, RoomID: c.RoomID, Error: coreError(ErrCodeRoomNotFound, "room session ended")})
		return nil
	}
	return rs
}

// handleJoinRequest drives the NONE -> REQUESTED transition, with a
// short-circuit for users who are already members. The server is the
// sole decider of membership, so even returning members re-announce.
func (h *Hub) handleJoinRequest(c *Client) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}

	uid := c.User.ID

	if rs.members.Contains(uid) {
		// Existing member (the creator included): confirm membership
		// to everyone. Receivers dedupe by user id, so the repeated
		// broadcast is harmless.
		member, _ := rs.members.Get(uid)
		rs.pending.Remove(uid)
		rs.broadcast(&Event{Kind: EventMemberJoined, RoomID: rs.id, User: member.User, Role: member.Role})
		return
	}

	if !rs.hostConnected() {
		// Nobody can approve the request; the client must leave.
		c.send(&Event{Kind: EventNoHost, RoomID: rs.id})
		return
	}

	if !rs.pending.Add(c.User) {
		// Duplicate request from the same user: already pending, do
		// not re-notify the decision-maker.
		return
	}

	rs.notifyCreator(&Event{Kind: EventGiveRequest, RoomID: rs.id, User: c.User})
	h.log.Debug().Str("room_id", rs.id).Int64("user_id", uid).Msg("join request pending")
}

// handleAcceptJoin drives REQUESTED -> ACCEPTED: the member is added
// with the default viewer role and every client converges via the
// joined broadcast.
func (h *Hub) handleAcceptJoin(c *Client, user UserRef) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}
	if c.User.ID != rs.creator.ID {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeNotAuthorized, "only the creator can accept join requests")})
		return
	}
	if user.ID == 0 {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeBadRequest, "user is required")})
		return
	}

	rs.pending.Remove(user.ID)
	rs.members.Upsert(user, RoleViewer)

	// Broadcast unconditionally: delivery is at-least-once and every
	// projection's insert is idempotent by user id.
	member, _ := rs.members.Get(user.ID)
	rs.broadcast(&Event{Kind: EventMemberJoined, RoomID: rs.id, User: member.User, Role: member.Role})

	// The new member asked for the latest content while still pending
	// and was refused; deliver it now that they may see it.
	if rs.snapshot != nil {
		rs.sendToUser(user.ID, &Event{Kind: EventLatestContent, RoomID: rs.id, Content: rs.snapshot})
	}
	h.log.Info().Str("room_id", rs.id).Int64("user_id", user.ID).Msg("join request accepted")
}

// handleRejectJoin drives REQUESTED -> REJECTED: the pending entry is
// cleared and the requester is routed out of the waiting screen.
func (h *Hub) handleRejectJoin(c *Client, userID int64) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}
	if c.User.ID != rs.creator.ID {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeNotAuthorized, "only the creator can reject join requests")})
		return
	}

	if rs.pending.Remove(userID) {
		rs.sendToUser(userID, &Event{Kind: EventNavigateAway, RoomID: rs.id})
		h.log.Info().Str("room_id", rs.id).Int64("user_id", userID).Msg("join request rejected")
	}
}

// handleKick removes a member and routes their connections away.
func (h *Hub) handleKick(c *Client, userID int64) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}
	if c.User.ID != rs.creator.ID {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeNotAuthorized, "only the creator can kick members")})
		return
	}
	if userID == rs.creator.ID {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeBadRequest, "cannot kick yourself")})
		return
	}

	rs.pending.Remove(userID)
	if rs.members.Remove(userID) {
		rs.broadcast(&Event{Kind: EventMemberLeft, RoomID: rs.id, UserID: userID})
	}

	rs.sendToUser(userID, &Event{Kind: EventNavigateAway, RoomID: rs.id})
	for client := range rs.clients {
		if client.User.ID == userID {
			delete(rs.clients, client)
			client.RoomID = ""
		}
	}
	h.log.Info().Str("room_id", rs.id).Int64("user_id", userID).Msg("member kicked")
}

// handleSetRole changes a member's tier between viewer and editor.
func (h *Hub) handleSetRole(c *Client, userID int64, role Role) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}
	if c.User.ID != rs.creator.ID {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeNotAuthorized, "only the creator can change roles")})
		return
	}
	if !ValidAssignableRole(role) {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeBadRequest, "role must be viewer or editor")})
		return
	}
	if userID == rs.creator.ID {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeBadRequest, "creator role is implied")})
		return
	}

	if rs.members.SetRole(userID, role) {
		rs.broadcast(&Event{Kind: EventRoleUpdated, RoomID: rs.id, UserID: userID, Role: role})
	}
}

// handleContentChange caches the snapshot and relays the update to
// the other member connections. The payload is opaque here; the
// editor/canvas engines are its only consumers.
func (h *Hub) handleContentChange(c *Client, cmd *Command) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}
	member, ok := rs.members.Get(c.User.ID)
	if !ok {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeNotMember, "not a member of this room")})
		return
	}
	if member.Role == RoleViewer {
		c.send(&Event{Kind: EventError, RoomID: rs.id, Error: coreError(ErrCodeNotAuthorized, "viewers cannot edit")})
		return
	}

	rs.snapshot = cmd.Content
	rs.relayToMembers(c, &Event{Kind: EventContentChanged, RoomID: rs.id, UserID: c.User.ID, Content: cmd.Content})
}

// handleNeedLatestContent serves the cached snapshot, if any. Only
// members may pull it; requests arriving during the join bootstrap
// (before acceptance) are silently dropped, and acceptance pushes the
// snapshot instead.
func (h *Hub) handleNeedLatestContent(c *Client) {
	rs := h.sessionOf(c)
	if rs == nil {
		return
	}
	if !rs.members.Contains(c.User.ID) {
		return
	}
	if rs.snapshot == nil {
		return
	}
	c.send(&Event{Kind: EventLatestContent, RoomID: rs.id, Content: rs.snapshot})
}

// handleUnregister converts a disconnect into pending-request cleanup,
// member removal, or host-loss teardown.
func (h *Hub) handleUnregister(c *Client) {
	c.close()
	h.detach(c)
}

func (h *Hub) detach(c *Client) {
	if c.RoomID == "" {
		return
	}
	rs, ok := h.sessions[c.RoomID]
	if !ok {
		c.RoomID = ""
		return
	}

	delete(rs.clients, c)
	roomID := c.RoomID
	c.RoomID = ""

	uid := c.User.ID
	if rs.connectionCount(uid) > 0 {
		// The user still holds other connections to this room.
		return
	}

	// Last connection of this user: abandon any outstanding request.
	rs.pending.Remove(uid)

	if uid == rs.creator.ID {
		// Host loss: remaining clients must leave; the session ends.
		rs.broadcast(&Event{Kind: EventNoHost, RoomID: roomID})
		for client := range rs.clients {
			client.RoomID = ""
		}
		delete(h.sessions, roomID)
		h.log.Info().Str("room_id", roomID).Msg("host lost, room session ended")
		return
	}

	if rs.members.Remove(uid) {
		rs.broadcast(&Event{Kind: EventMemberLeft, RoomID: roomID, UserID: uid})
	}

	if len(rs.clients) == 0 {
		delete(h.sessions, roomID)
		h.log.Debug().Str("room_id", roomID).Msg("room session empty, removed")
	}
}
