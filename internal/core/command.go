package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandRegister binds the connection to a room.
	CommandRegister CommandKind = iota
	// CommandJoinRequest signals membership intent for the registered room.
	CommandJoinRequest
	// CommandAcceptJoin accepts a pending requester (creator only).
	CommandAcceptJoin
	// CommandRejectJoin discards a pending requester (creator only).
	CommandRejectJoin
	// CommandKick removes a member from the room (creator only).
	CommandKick
	// CommandSetRole changes a member's role (creator only).
	CommandSetRole
	// CommandContentChange relays a collaborative-content update to peers.
	CommandContentChange
	// CommandNeedLatestContent requests the latest content snapshot.
	CommandNeedLatestContent
)

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	RoomID  string
	User    UserRef         // accept target
	UserID  int64           // reject/kick/set-role target
	Role    Role            // set-role value
	Content json.RawMessage // content payload, opaque to the core
}
