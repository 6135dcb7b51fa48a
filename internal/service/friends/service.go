package friends

import (
	"context"
	"errors"
	"fmt"

	"github.com/dicode-app/dicode-server/internal/store"
)

// Common errors for friend operations.
var (
	ErrCannotFriendSelf     = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends       = errors.New("already friends")
	ErrRequestAlreadyExists = errors.New("friend request already exists")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrUserNotFound         = errors.New("user not found")
)

// Entry is a friend-list item joined with the counterpart's identity.
type Entry struct {
	User   *store.User
	Status store.FriendStatus
}

// Service provides friend management business logic. The room flow
// consumes it only as ancillary data: failures here must degrade, not
// break room entry.
type Service struct {
	store store.Store
}

// New creates a new friends service.
func New(st store.Store) *Service {
	return &Service{
		store: st,
	}
}

// SendRequest sends a friend request from one user to another.
func (s *Service) SendRequest(ctx context.Context, fromUserID, toUserID int64) (*store.Friend, error) {
	if fromUserID == toUserID {
		return nil, ErrCannotFriendSelf
	}

	if _, err := s.store.GetUserByID(ctx, toUserID); err != nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.store.GetFriendship(ctx, fromUserID, toUserID)
	if err == nil {
		switch existing.Status {
		case store.FriendStatusAccepted:
			return nil, ErrAlreadyFriends
		case store.FriendStatusPending:
			return nil, ErrRequestAlreadyExists
		}
	}

	friend, err := s.store.CreateFriendRequest(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("create friend request: %w", err)
	}

	return friend, nil
}

// AcceptRequest accepts a pending friend request directed to userID.
func (s *Service) AcceptRequest(ctx context.Context, userID, fromUserID int64) error {
	existing, err := s.store.GetFriendship(ctx, fromUserID, userID)
	if err != nil {
		return ErrRequestNotFound
	}

	// Must be pending and directed to the accepting user.
	if existing.Status != store.FriendStatusPending || existing.FriendID != userID {
		return ErrRequestNotFound
	}

	if err := s.store.UpdateFriendStatus(ctx, existing.UserID, existing.FriendID, store.FriendStatusAccepted); err != nil {
		return fmt.Errorf("accept request: %w", err)
	}

	return nil
}

// RemoveFriend deletes a friendship or pending request in either direction.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if _, err := s.store.GetFriendship(ctx, userID, friendID); err != nil {
		return ErrRequestNotFound
	}

	if err := s.store.DeleteFriendship(ctx, userID, friendID); err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}

	return nil
}

// List returns the user's friendships joined with the counterpart's
// identity, optionally filtered by status.
func (s *Service) List(ctx context.Context, userID int64, status *store.FriendStatus) ([]Entry, error) {
	friends, err := s.store.ListFriends(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	entries := make([]Entry, 0, len(friends))
	for _, f := range friends {
		counterpartID := f.FriendID
		if counterpartID == userID {
			counterpartID = f.UserID
		}

		user, err := s.store.GetUserByID(ctx, counterpartID)
		if err != nil {
			// Dangling record; skip rather than failing the whole list.
			continue
		}
		entries = append(entries, Entry{User: user, Status: f.Status})
	}

	return entries, nil
}
