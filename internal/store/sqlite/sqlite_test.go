package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/dicode-app/dicode-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearchUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Seed users
	users := []string{"alice", "alex", "alan", "bob", "charlie"}
	for _, u := range users {
		if _, err := s.CreateUser(ctx, u, u, "", "hash"); err != nil {
			t.Fatalf("failed to create user %s: %v", u, err)
		}
	}

	// Create a guest user (should be excluded)
	if _, err := s.CreateGuestUser(ctx, "session-1234"); err != nil {
		t.Fatalf("failed to create guest user: %v", err)
	}

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "search 'al'",
			query:    "al",
			expected: []string{"alan", "alex", "alice"},
		},
		{
			name:     "search 'li'",
			query:    "li",
			expected: []string{"alice", "charlie"},
		},
		{
			name:     "search non-existent",
			query:    "z",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.SearchUsers(ctx, tt.query)
			if err != nil {
				t.Fatalf("SearchUsers failed: %v", err)
			}

			if len(results) != len(tt.expected) {
				t.Fatalf("expected %d results, got %d", len(tt.expected), len(results))
			}
			for i, u := range results {
				if u.Username != tt.expected[i] {
					t.Errorf("expected %s at index %d, got %s", tt.expected[i], i, u.Username)
				}
			}
		})
	}
}

func TestRoomCatalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	creator, err := s.CreateUser(ctx, "creator", "Creator", "", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	room, err := s.CreateRoom(ctx, "room-1", "My Space", creator.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.CreatorID != creator.ID || room.Name != "My Space" {
		t.Fatalf("unexpected room: %+v", room)
	}

	got, err := s.GetRoomByID(ctx, "room-1")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if got.ID != "room-1" {
		t.Fatalf("unexpected room id: %s", got.ID)
	}

	rooms, err := s.ListRoomsByCreator(ctx, creator.ID)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(rooms))
	}

	if err := s.DeleteRoom(ctx, "room-1"); err != nil {
		t.Fatalf("delete room: %v", err)
	}

	if _, err := s.GetRoomByID(ctx, "room-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteRoom(ctx, "room-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestFriendLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, "alice", "Alice", "", "hash")
	bob, _ := s.CreateUser(ctx, "bob", "Bob", "", "hash")

	if _, err := s.CreateFriendRequest(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("create friend request: %v", err)
	}

	// Lookup works in both directions.
	f, err := s.GetFriendship(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("get friendship: %v", err)
	}
	if f.Status != store.FriendStatusPending {
		t.Fatalf("expected pending, got %s", f.Status)
	}

	if err := s.UpdateFriendStatus(ctx, alice.ID, bob.ID, store.FriendStatusAccepted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	accepted := store.FriendStatusAccepted
	list, err := s.ListFriends(ctx, bob.ID, &accepted)
	if err != nil {
		t.Fatalf("list friends: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 accepted friendship, got %d", len(list))
	}

	if err := s.DeleteFriendship(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("delete friendship: %v", err)
	}
	if _, err := s.GetFriendship(ctx, alice.ID, bob.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
