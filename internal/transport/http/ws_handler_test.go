package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dicode-app/dicode-server/internal/proto"
)

func registerUser(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	body, _ := json.Marshal(RegisterRequest{
		Username: username,
		Name:     username,
		Password: "password123",
	})
	resp, err := ts.Client().Post(ts.URL+"/api/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: unexpected status %d", username, resp.StatusCode)
	}

	var auth AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	return auth.Token
}

func createRoom(t *testing.T, ts *httptest.Server, token, name string) string {
	t.Helper()

	body, _ := json.Marshal(CreateRoomRequest{Name: name})
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/rooms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: unexpected status %d", resp.StatusCode)
	}

	var room RoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		t.Fatalf("decode room response: %v", err)
	}
	return room.ID
}

func dialRoom(t *testing.T, ctx context.Context, ts *httptest.Server, token, roomID string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	send(t, ctx, conn, proto.InboundTypeHello, proto.HelloData{Token: token})
	send(t, ctx, conn, proto.InboundTypeRegister, proto.RegisterData{RoomID: roomID})
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	payload, _ := json.Marshal(data)
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readEvent reads outbound frames until it sees the named event.
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) proto.Outbound {
	t.Helper()

	for {
		var out proto.Outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read waiting for %s: %v", event, err)
		}
		if out.Type == proto.OutboundTypeError {
			t.Fatalf("error while waiting for %s: %+v", event, out.Error)
		}
		if out.Event == event {
			return out
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketJoinRequestAcceptFlow(t *testing.T) {
	ts, _, _ := startTestServer(t)

	creatorToken := registerUser(t, ts, "carol")
	guestToken := registerUser(t, ts, "uma")
	roomID := createRoom(t, ts, creatorToken, "design review")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creator := dialRoom(t, ctx, ts, creatorToken, roomID)
	send(t, ctx, creator, proto.InboundTypeJoinReq, proto.JoinReqData{RoomID: roomID})

	// The creator is already a member, so the announce short-circuits.
	joined := readEvent(t, ctx, creator, proto.EventJoinedRoom)
	var creatorJoined proto.JoinedRoomData
	if err := json.Unmarshal(joined.Data, &creatorJoined); err != nil {
		t.Fatalf("unmarshal joined-room: %v", err)
	}
	if creatorJoined.User.Username != "carol" || creatorJoined.Role != "creator" {
		t.Fatalf("unexpected creator announce: %+v", creatorJoined)
	}

	guest := dialRoom(t, ctx, ts, guestToken, roomID)
	send(t, ctx, guest, proto.InboundTypeJoinReq, proto.JoinReqData{RoomID: roomID})

	giveReq := readEvent(t, ctx, creator, proto.EventGiveReq)
	var pending proto.GiveReqData
	if err := json.Unmarshal(giveReq.Data, &pending); err != nil {
		t.Fatalf("unmarshal give-req: %v", err)
	}
	if pending.UserData.Username != "uma" {
		t.Fatalf("unexpected pending user: %+v", pending.UserData)
	}

	send(t, ctx, creator, proto.InboundTypeJoinRoom, proto.JoinRoomData{
		RoomID: roomID,
		User:   pending.UserData,
	})

	for _, conn := range []*websocket.Conn{creator, guest} {
		out := readEvent(t, ctx, conn, proto.EventJoinedRoom)
		var data proto.JoinedRoomData
		if err := json.Unmarshal(out.Data, &data); err != nil {
			t.Fatalf("unmarshal joined-room: %v", err)
		}
		if data.User.Username != "uma" || data.Role != "viewer" {
			t.Fatalf("unexpected member announce: %+v", data)
		}
	}
}

func TestWebSocketKickRedirectsMember(t *testing.T) {
	ts, _, _ := startTestServer(t)

	creatorToken := registerUser(t, ts, "carol")
	guestToken := registerUser(t, ts, "uma")
	roomID := createRoom(t, ts, creatorToken, "pairing")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creator := dialRoom(t, ctx, ts, creatorToken, roomID)
	guest := dialRoom(t, ctx, ts, guestToken, roomID)
	send(t, ctx, guest, proto.InboundTypeJoinReq, proto.JoinReqData{RoomID: roomID})

	giveReq := readEvent(t, ctx, creator, proto.EventGiveReq)
	var pending proto.GiveReqData
	if err := json.Unmarshal(giveReq.Data, &pending); err != nil {
		t.Fatalf("unmarshal give-req: %v", err)
	}
	send(t, ctx, creator, proto.InboundTypeJoinRoom, proto.JoinRoomData{
		RoomID: roomID,
		User:   pending.UserData,
	})
	readEvent(t, ctx, guest, proto.EventJoinedRoom)

	send(t, ctx, creator, proto.InboundTypeKickRoom, proto.KickRoomData{UserID: pending.UserData.ID})

	out := readEvent(t, ctx, creator, proto.EventRoomUpdated)
	var removed proto.RoomUpdatedData
	if err := json.Unmarshal(out.Data, &removed); err != nil {
		t.Fatalf("unmarshal room-updated: %v", err)
	}
	if removed.UserID != pending.UserData.ID {
		t.Fatalf("unexpected removed user: %d", removed.UserID)
	}

	readEvent(t, ctx, guest, proto.EventNavigateRoom)
}
