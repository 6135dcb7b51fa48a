package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dicode-app/dicode-server/internal/proto"
)

// Sender emits protocol messages toward the server.
type Sender interface {
	Send(ctx context.Context, msg proto.Inbound) error
}

// Controller orchestrates one client's room session: the fixed
// bootstrap sequence on entry, folding incoming events into the
// projection, and the exit path when the server routes us away.
type Controller struct {
	sender  Sender
	proj    *Projection
	onLeave func()
	left    bool
}

// NewController builds a controller. onLeave is invoked exactly once
// when the client must exit the room (no-host or navigate-room).
func NewController(sender Sender, proj *Projection, onLeave func()) *Controller {
	if onLeave == nil {
		onLeave = func() {}
	}
	return &Controller{sender: sender, proj: proj, onLeave: onLeave}
}

// Projection exposes the controller's room view.
func (c *Controller) Projection() *Projection { return c.proj }

// Enter runs the bootstrap sequence in fixed order: bind the
// connection to the room, announce join intent (required even for the
// creator; the server is the sole decider of membership), then ask
// peers for the latest content snapshot.
func (c *Controller) Enter(ctx context.Context) error {
	roomID := c.proj.Room.ID

	if err := c.emit(ctx, proto.InboundTypeRegister, proto.RegisterData{RoomID: roomID}); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if err := c.emit(ctx, proto.InboundTypeJoinReq, proto.JoinReqData{RoomID: roomID}); err != nil {
		return fmt.Errorf("join-req: %w", err)
	}
	if err := c.emit(ctx, proto.InboundTypeNeedLatestCode, struct{}{}); err != nil {
		return fmt.Errorf("need-latest-code: %w", err)
	}
	return nil
}

// Handle folds one server message. Once the room has ended for this
// client no further room events are processed.
func (c *Controller) Handle(out proto.Outbound) error {
	if c.left {
		return nil
	}

	if out.Type == proto.OutboundTypeEvent {
		switch out.Event {
		case proto.EventNoHost, proto.EventNavigateRoom:
			c.left = true
			_ = c.proj.Apply(out)
			c.onLeave()
			return nil
		}
	}

	return c.proj.Apply(out)
}

// Left reports whether the client has exited the room.
func (c *Controller) Left() bool { return c.left }

// Accept approves a pending requester (decision-maker action).
func (c *Controller) Accept(ctx context.Context, user proto.UserData) error {
	return c.emit(ctx, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: c.proj.Room.ID, User: user})
}

// Reject discards a pending requester.
func (c *Controller) Reject(ctx context.Context, userID int64) error {
	return c.emit(ctx, proto.InboundTypeRejectRoom, proto.RejectRoomData{UserID: userID})
}

// Kick removes a member from the room.
func (c *Controller) Kick(ctx context.Context, userID int64) error {
	return c.emit(ctx, proto.InboundTypeKickRoom, proto.KickRoomData{UserID: userID})
}

// SetRole changes a member's role between viewer and editor.
func (c *Controller) SetRole(ctx context.Context, userID int64, role string) error {
	return c.emit(ctx, proto.InboundTypeSetRole, proto.SetRoleData{UserID: userID, Role: role})
}

// SendContent publishes a content update to the room.
func (c *Controller) SendContent(ctx context.Context, code json.RawMessage) error {
	return c.emit(ctx, proto.InboundTypeCodeChange, proto.CodeData{Code: code})
}

func (c *Controller) emit(ctx context.Context, msgType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msgType, err)
	}
	return c.sender.Send(ctx, proto.Inbound{Type: msgType, Data: payload})
}
