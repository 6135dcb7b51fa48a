package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello          = "hello"
	InboundTypeRegister       = "register"
	InboundTypeJoinReq        = "join-req"
	InboundTypeJoinRoom       = "join-room"
	InboundTypeRejectRoom     = "reject-room"
	InboundTypeKickRoom       = "kick-room"
	InboundTypeSetRole        = "set-role"
	InboundTypeCodeChange     = "code-change"
	InboundTypeNeedLatestCode = "need-latest-code"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventGiveReq      = "give-req"
	EventJoinedRoom   = "joined-room"
	EventRoomUpdated  = "room-updated"
	EventRoleUpdated  = "role-updated"
	EventNavigateRoom = "navigate-room"
	EventNoHost       = "no-host"
	EventCodeChange   = "code-change"
	EventLatestCode   = "latest-code"

	// EventJoinedRoomLegacy is an older spelling of EventJoinedRoom
	// still emitted by some peers; folds treat both as one transition.
	EventJoinedRoomLegacy = "joine-room"
)

// UserData carries a user's identity and display attributes.
type UserData struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
}

// MemberData is a membership entry as seen on the wire.
type MemberData struct {
	User UserData `json:"user"`
	Role string   `json:"role"`
}

// HelloData is sent by the client to authenticate the connection.
type HelloData struct {
	Token    string `json:"token"`
	Protocol int    `json:"protocol,omitempty"`
}

// RegisterData binds the connection to a room.
type RegisterData struct {
	RoomID string `json:"roomId"`
}

// JoinReqData announces membership intent.
type JoinReqData struct {
	RoomID string `json:"roomId"`
}

// JoinRoomData is the creator's acceptance of a pending user.
type JoinRoomData struct {
	RoomID string   `json:"roomId"`
	User   UserData `json:"user"`
}

// RejectRoomData discards a pending join request.
type RejectRoomData struct {
	UserID int64 `json:"userId"`
}

// KickRoomData removes a member from the room.
type KickRoomData struct {
	UserID int64 `json:"userId"`
}

// SetRoleData changes a member's role.
type SetRoleData struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// CodeData carries an opaque collaborative-content payload.
type CodeData struct {
	Code json.RawMessage `json:"code"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// GiveReqData notifies the decision-maker of a pending requester.
type GiveReqData struct {
	UserData UserData `json:"userData"`
}

// JoinedRoomData notifies that a member was added.
type JoinedRoomData struct {
	User UserData `json:"user"`
	Role string   `json:"role,omitempty"`
}

// RoomUpdatedData notifies that a member left or was removed.
type RoomUpdatedData struct {
	UserID int64 `json:"userId"`
}

// RoleUpdatedData notifies that a member's role changed.
type RoleUpdatedData struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
