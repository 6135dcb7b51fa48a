package core

import "encoding/json"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventGiveRequest notifies the creator's clients of a pending requester.
	EventGiveRequest EventKind = iota
	// EventMemberJoined notifies room clients that a member was added.
	EventMemberJoined
	// EventMemberLeft notifies room clients that a member left or was removed.
	EventMemberLeft
	// EventRoleUpdated notifies room clients that a member's role changed.
	EventRoleUpdated
	// EventNavigateAway forces a client out of the room view.
	EventNavigateAway
	// EventNoHost tells clients the room has no active creator.
	EventNoHost
	// EventContentChanged relays a collaborative-content update.
	EventContentChanged
	// EventLatestContent delivers the cached content snapshot.
	EventLatestContent
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the room.
type Event struct {
	Kind    EventKind
	RoomID  string
	User    UserRef // requester for give-request, member for member-joined
	UserID  int64   // member-left / role-updated target
	Role    Role
	Content json.RawMessage
	Error   *CoreError
}
