package core

// UserRef is a user's stable identity plus display attributes.
// Display attributes are treated as immutable for the session.
type UserRef struct {
	ID       int64
	Username string
	Name     string
	Avatar   string
}

// Role is a member's permission tier inside a room.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleEditor  Role = "editor"
	RoleCreator Role = "creator"
)

// ValidAssignableRole reports whether a role can be assigned to a
// regular member. The creator role is implied, never assigned.
func ValidAssignableRole(r Role) bool {
	return r == RoleViewer || r == RoleEditor
}

// Member binds a user to a room with an assigned role.
type Member struct {
	User UserRef
	Role Role
}

// memberSet holds at most one member entry per user id. All mutations
// are idempotent; every membership path in the hub goes through it.
type memberSet struct {
	byID map[int64]Member
}

func newMemberSet() *memberSet {
	return &memberSet{byID: make(map[int64]Member)}
}

// Upsert inserts the user with the given role if absent. Returns true
// if newly inserted. Re-adding an existing member is a no-op that
// keeps the existing role.
func (s *memberSet) Upsert(user UserRef, role Role) bool {
	if _, exists := s.byID[user.ID]; exists {
		return false
	}
	s.byID[user.ID] = Member{User: user, Role: role}
	return true
}

// Remove deletes the member if present. Returns true if removed.
func (s *memberSet) Remove(userID int64) bool {
	if _, exists := s.byID[userID]; !exists {
		return false
	}
	delete(s.byID, userID)
	return true
}

// SetRole updates an existing member's role. Returns true if the
// member exists and the role actually changed.
func (s *memberSet) SetRole(userID int64, role Role) bool {
	m, exists := s.byID[userID]
	if !exists || m.Role == role {
		return false
	}
	m.Role = role
	s.byID[userID] = m
	return true
}

// Get returns the member entry for a user id.
func (s *memberSet) Get(userID int64) (Member, bool) {
	m, ok := s.byID[userID]
	return m, ok
}

// Contains reports whether the user is a member.
func (s *memberSet) Contains(userID int64) bool {
	_, ok := s.byID[userID]
	return ok
}

// List returns the current members. Order is not significant.
func (s *memberSet) List() []Member {
	out := make([]Member, 0, len(s.byID))
	for _, m := range s.byID {
		out = append(out, m)
	}
	return out
}

func (s *memberSet) Len() int {
	return len(s.byID)
}

// pendingSet holds at most one outstanding join request per user id.
type pendingSet struct {
	byID map[int64]UserRef
}

func newPendingSet() *pendingSet {
	return &pendingSet{byID: make(map[int64]UserRef)}
}

// Add records a join request if none is outstanding for that user.
// Returns true if this is a new request.
func (s *pendingSet) Add(user UserRef) bool {
	if _, exists := s.byID[user.ID]; exists {
		return false
	}
	s.byID[user.ID] = user
	return true
}

// Remove clears the request if present. Returns true if removed.
func (s *pendingSet) Remove(userID int64) bool {
	if _, exists := s.byID[userID]; !exists {
		return false
	}
	delete(s.byID, userID)
	return true
}

// Contains reports whether the user has an outstanding request.
func (s *pendingSet) Contains(userID int64) bool {
	_, ok := s.byID[userID]
	return ok
}

// List returns the outstanding requests. Order is not significant.
func (s *pendingSet) List() []UserRef {
	out := make([]UserRef, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	return out
}
