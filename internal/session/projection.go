// Package session holds the client-side view of a room: a projection
// folded from server events, and a controller that drives the room
// bootstrap and exit flow. The projection is a cache of the server's
// authoritative state; it reconciles, never dictates.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/dicode-app/dicode-server/internal/proto"
)

// Member is a projected membership entry.
type Member struct {
	User proto.UserData
	Role string
}

// RoomState is the static part of the room as loaded on entry.
type RoomState struct {
	ID      string
	Name    string
	Creator proto.UserData
}

// Projection is a pure fold of received events onto local room state.
// Every insertion and removal is keyed by stable user identity and
// idempotent, so the projection converges to the server's set under
// at-least-once delivery regardless of duplicate events.
type Projection struct {
	Local proto.UserData
	Room  RoomState

	members []Member
	pending []proto.UserData
	ended   bool
}

// NewProjection builds a projection for the local user entering room.
func NewProjection(local proto.UserData, room RoomState) *Projection {
	return &Projection{Local: local, Room: room}
}

// Apply folds one server event into the projection. Unknown events
// are ignored. After the room has ended (no-host or navigate-room)
// all further events are dropped.
func (p *Projection) Apply(out proto.Outbound) error {
	if out.Type != proto.OutboundTypeEvent {
		return nil
	}
	if p.ended {
		return nil
	}

	switch out.Event {
	case proto.EventGiveReq:
		var data proto.GiveReqData
		if err := json.Unmarshal(out.Data, &data); err != nil {
			return fmt.Errorf("decode %s: %w", out.Event, err)
		}
		p.addPending(data.UserData)

	case proto.EventJoinedRoom, proto.EventJoinedRoomLegacy:
		var data proto.JoinedRoomData
		if err := json.Unmarshal(out.Data, &data); err != nil {
			return fmt.Errorf("decode %s: %w", out.Event, err)
		}
		role := data.Role
		if role == "" {
			role = "viewer"
		}
		p.upsertMember(data.User, role)
		p.removePending(data.User.ID)

	case proto.EventRoomUpdated:
		var data proto.RoomUpdatedData
		if err := json.Unmarshal(out.Data, &data); err != nil {
			return fmt.Errorf("decode %s: %w", out.Event, err)
		}
		p.removeMember(data.UserID)

	case proto.EventRoleUpdated:
		var data proto.RoleUpdatedData
		if err := json.Unmarshal(out.Data, &data); err != nil {
			return fmt.Errorf("decode %s: %w", out.Event, err)
		}
		for i := range p.members {
			if p.members[i].User.ID == data.UserID {
				p.members[i].Role = data.Role
			}
		}

	case proto.EventNoHost, proto.EventNavigateRoom:
		p.ended = true
	}

	return nil
}

// upsertMember inserts the member if not already present by user id.
// The single dedup primitive for every member-added path.
func (p *Projection) upsertMember(user proto.UserData, role string) {
	for _, m := range p.members {
		if m.User.ID == user.ID {
			return
		}
	}
	p.members = append(p.members, Member{User: user, Role: role})
}

// removeMember removes by user id; absent ids are a no-op.
func (p *Projection) removeMember(userID int64) {
	for i, m := range p.members {
		if m.User.ID == userID {
			p.members = append(p.members[:i], p.members[i+1:]...)
			return
		}
	}
}

func (p *Projection) addPending(user proto.UserData) {
	for _, u := range p.pending {
		if u.ID == user.ID {
			return
		}
	}
	p.pending = append(p.pending, user)
}

func (p *Projection) removePending(userID int64) {
	for i, u := range p.pending {
		if u.ID == userID {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			return
		}
	}
}

// Members returns a copy of the projected member set.
func (p *Projection) Members() []Member {
	out := make([]Member, len(p.members))
	copy(out, p.members)
	return out
}

// Pending returns a copy of the visible join requests.
func (p *Projection) Pending() []proto.UserData {
	out := make([]proto.UserData, len(p.pending))
	copy(out, p.pending)
	return out
}

// Ended reports whether the room has terminated for this client.
func (p *Projection) Ended() bool { return p.ended }

// IsCreator is derived fresh on every call, never cached: true iff
// the room's creator id equals the local user's id.
func (p *Projection) IsCreator() bool {
	return p.Room.Creator.ID == p.Local.ID
}

// IsMember is derived from the current member set.
func (p *Projection) IsMember() bool {
	_, ok := p.RoleOf(p.Local.ID)
	return ok
}

// RoleOf computes a user's role from current room state. The creator
// always has the creator role, listed or not.
func (p *Projection) RoleOf(userID int64) (string, bool) {
	if userID == p.Room.Creator.ID {
		return "creator", true
	}
	for _, m := range p.members {
		if m.User.ID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// Role returns the local user's role, or empty if not a member.
func (p *Projection) Role() string {
	role, _ := p.RoleOf(p.Local.ID)
	return role
}

// CanKick reports whether the local user may kick the given user:
// creator only, and never against self.
func (p *Projection) CanKick(userID int64) bool {
	return p.IsCreator() && userID != p.Local.ID
}
