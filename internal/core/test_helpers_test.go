package core

import (
	"context"
	"testing"
	"time"

	"github.com/dicode-app/dicode-server/internal/store"
)

// fakeCatalog serves rooms and users from memory.
type fakeCatalog struct {
	rooms map[string]*store.Room
	users map[int64]*store.User
}

func (f *fakeCatalog) GetRoomByID(_ context.Context, id string) (*store.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

// newTestHub starts a hub with one room ("r1") created by carol (id 1).
func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()

	catalog := &fakeCatalog{
		rooms: map[string]*store.Room{
			"r1": {ID: "r1", Name: "space", CreatorID: 1},
		},
		users: map[int64]*store.User{
			1: {ID: 1, Username: "carol", DisplayName: "Carol"},
		},
	}

	hub := NewHub(catalog, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go hub.Run(ctx)

	t.Cleanup(cancel)
	return hub, cancel
}

func carolRef() UserRef { return UserRef{ID: 1, Username: "carol", Name: "Carol"} }
func umaRef() UserRef   { return UserRef{ID: 2, Username: "uma", Name: "Uma"} }

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent asserts no event of the given kind arrives within a
// short window. Other event kinds are discarded.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}
