package core

import "encoding/json"

// roomSession is the authoritative live state of one room: connected
// clients, the member set, outstanding join requests, and the cached
// content snapshot. Owned exclusively by the hub loop; all mutations
// for a room are serialized there.
type roomSession struct {
	id      string
	name    string
	creator UserRef

	members *memberSet
	pending *pendingSet
	clients map[*Client]struct{}

	// snapshot is the last content payload seen, served to late
	// joiners on a latest-state request.
	snapshot json.RawMessage
}

func newRoomSession(id, name string, creator UserRef) *roomSession {
	rs := &roomSession{
		id:      id,
		name:    name,
		creator: creator,
		members: newMemberSet(),
		pending: newPendingSet(),
		clients: make(map[*Client]struct{}),
	}
	// The creator is conceptually always a member with elevated rights.
	rs.members.Upsert(creator, RoleCreator)
	return rs
}

// broadcast sends an event to all clients in the room.
func (rs *roomSession) broadcast(ev *Event) {
	for client := range rs.clients {
		client.send(ev)
	}
}

// relayToMembers sends an event to member connections only, excluding
// the origin. Pending requesters on the waiting screen never see room
// content.
func (rs *roomSession) relayToMembers(origin *Client, ev *Event) {
	for client := range rs.clients {
		if client == origin {
			continue
		}
		if !rs.members.Contains(client.User.ID) {
			continue
		}
		client.send(ev)
	}
}

// notifyCreator sends an event to every connection held by the
// room's creator (the decision-maker).
func (rs *roomSession) notifyCreator(ev *Event) {
	for client := range rs.clients {
		if client.User.ID == rs.creator.ID {
			client.send(ev)
		}
	}
}

// hostConnected reports whether any creator connection is present.
func (rs *roomSession) hostConnected() bool {
	for client := range rs.clients {
		if client.User.ID == rs.creator.ID {
			return true
		}
	}
	return false
}

// connectionCount returns how many connections a user holds in the room.
func (rs *roomSession) connectionCount(userID int64) int {
	n := 0
	for client := range rs.clients {
		if client.User.ID == userID {
			n++
		}
	}
	return n
}

// sendToUser delivers an event to every connection of a user.
func (rs *roomSession) sendToUser(userID int64, ev *Event) {
	for client := range rs.clients {
		if client.User.ID == userID {
			client.send(ev)
		}
	}
}
