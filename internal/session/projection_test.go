package session

import (
	"encoding/json"
	"testing"

	"github.com/dicode-app/dicode-server/internal/proto"
)

func carol() proto.UserData { return proto.UserData{ID: 1, Username: "carol", Name: "Carol"} }
func uma() proto.UserData   { return proto.UserData{ID: 2, Username: "uma", Name: "Uma"} }

func testRoom() RoomState {
	return RoomState{ID: "r1", Name: "space", Creator: carol()}
}

func event(t *testing.T, name string, data any) proto.Outbound {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal event data: %v", err)
	}
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: payload}
}

func TestProjectionDuplicateJoinedIsAbsorbed(t *testing.T) {
	p := NewProjection(uma(), testRoom())

	joined := event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: uma()})
	for i := 0; i < 3; i++ {
		if err := p.Apply(joined); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	if n := len(p.Members()); n != 1 {
		t.Fatalf("expected exactly one member entry, got %d", n)
	}
	if !p.IsMember() {
		t.Fatalf("expected local user to be a member")
	}
	if p.Role() != "viewer" {
		t.Fatalf("expected default viewer role, got %q", p.Role())
	}
}

func TestProjectionLegacyJoinedEventName(t *testing.T) {
	p := NewProjection(carol(), testRoom())

	if err := p.Apply(event(t, proto.EventJoinedRoomLegacy, proto.JoinedRoomData{User: uma()})); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n := len(p.Members()); n != 1 {
		t.Fatalf("legacy event name not folded, members=%d", n)
	}
}

func TestProjectionRemoveAbsentMemberIsNoop(t *testing.T) {
	p := NewProjection(carol(), testRoom())

	if err := p.Apply(event(t, proto.EventRoomUpdated, proto.RoomUpdatedData{UserID: 42})); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(p.Members()) != 0 {
		t.Fatalf("unexpected state change")
	}
}

func TestProjectionPendingDedup(t *testing.T) {
	p := NewProjection(carol(), testRoom())

	give := event(t, proto.EventGiveReq, proto.GiveReqData{UserData: uma()})
	_ = p.Apply(give)
	_ = p.Apply(give)

	if n := len(p.Pending()); n != 1 {
		t.Fatalf("expected one pending entry, got %d", n)
	}

	// Acceptance clears the pending entry and adds the member.
	_ = p.Apply(event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: uma()}))
	if len(p.Pending()) != 0 {
		t.Fatalf("pending entry should be cleared after join")
	}
	if len(p.Members()) != 1 {
		t.Fatalf("member not added after join")
	}
}

func TestProjectionConvergesUnderDuplicatedInterleaving(t *testing.T) {
	// At-least-once delivery: every event may arrive multiple times.
	// The final set must equal the authoritative outcome.
	p := NewProjection(carol(), testRoom())

	events := []proto.Outbound{
		event(t, proto.EventGiveReq, proto.GiveReqData{UserData: uma()}),
		event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: uma()}),
		event(t, proto.EventGiveReq, proto.GiveReqData{UserData: proto.UserData{ID: 3, Username: "vik"}}),
		event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: proto.UserData{ID: 3, Username: "vik"}}),
		event(t, proto.EventRoomUpdated, proto.RoomUpdatedData{UserID: 3}),
	}

	for _, ev := range events {
		for i := 0; i < 2; i++ { // deliver everything twice
			if err := p.Apply(ev); err != nil {
				t.Fatalf("apply: %v", err)
			}
		}
	}

	members := p.Members()
	if len(members) != 1 || members[0].User.ID != 2 {
		t.Fatalf("projection did not converge: %+v", members)
	}
}

func TestProjectionRoleDerivation(t *testing.T) {
	p := NewProjection(carol(), testRoom())

	if !p.IsCreator() {
		t.Fatalf("creator id equality must derive IsCreator")
	}
	if role, ok := p.RoleOf(carol().ID); !ok || role != "creator" {
		t.Fatalf("creator role must be implied, got %q %v", role, ok)
	}

	_ = p.Apply(event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: uma()}))
	_ = p.Apply(event(t, proto.EventRoleUpdated, proto.RoleUpdatedData{UserID: 2, Role: "editor"}))

	if role, _ := p.RoleOf(2); role != "editor" {
		t.Fatalf("expected editor after role update, got %q", role)
	}

	theirView := NewProjection(uma(), testRoom())
	if theirView.IsCreator() {
		t.Fatalf("non-creator must not derive IsCreator")
	}
	if !p.CanKick(2) || p.CanKick(carol().ID) {
		t.Fatalf("kick affordance must be creator-only and never against self")
	}
}

func TestProjectionStopsAfterRoomEnds(t *testing.T) {
	p := NewProjection(uma(), testRoom())

	_ = p.Apply(event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: uma()}))
	_ = p.Apply(event(t, proto.EventNoHost, struct{}{}))

	if !p.Ended() {
		t.Fatalf("expected room to be ended")
	}

	// Events after termination must be ignored.
	_ = p.Apply(event(t, proto.EventJoinedRoom, proto.JoinedRoomData{User: proto.UserData{ID: 9}}))
	if len(p.Members()) != 1 {
		t.Fatalf("projection mutated after room end")
	}
}
