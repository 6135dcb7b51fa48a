package http

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestFriendRequestAcceptFlow(t *testing.T) {
	ts, _, _ := startTestServer(t)
	carolToken := registerUser(t, ts, "carol")
	umaToken := registerUser(t, ts, "uma")

	resp := doAuthed(t, ts, carolToken, http.MethodPost, "/api/friends/uma", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send request: unexpected status %d", resp.StatusCode)
	}

	// Duplicate request is rejected.
	dup := doAuthed(t, ts, carolToken, http.MethodPost, "/api/friends/uma", nil)
	dup.Body.Close()
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate request: unexpected status %d", dup.StatusCode)
	}

	accept := doAuthed(t, ts, umaToken, http.MethodPost, "/api/friends/carol/accept", nil)
	accept.Body.Close()
	if accept.StatusCode != http.StatusNoContent {
		t.Fatalf("accept: unexpected status %d", accept.StatusCode)
	}

	listResp := doAuthed(t, ts, carolToken, http.MethodGet, "/api/friends", nil)
	defer listResp.Body.Close()
	var list FriendListResponse
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode friend list: %v", err)
	}
	if !list.Success || len(list.Data) != 1 {
		t.Fatalf("unexpected friend list: %+v", list)
	}
	if list.Data[0].User.Username != "uma" || list.Data[0].Status != "accepted" {
		t.Fatalf("unexpected friend entry: %+v", list.Data[0])
	}

	remove := doAuthed(t, ts, umaToken, http.MethodDelete, "/api/friends/carol", nil)
	remove.Body.Close()
	if remove.StatusCode != http.StatusNoContent {
		t.Fatalf("remove: unexpected status %d", remove.StatusCode)
	}
}

func TestFriendSelfRequestRejected(t *testing.T) {
	ts, _, _ := startTestServer(t)
	token := registerUser(t, ts, "carol")

	resp := doAuthed(t, ts, token, http.MethodPost, "/api/friends/carol", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self request: unexpected status %d", resp.StatusCode)
	}
}

// A broken store must not surface as a 5xx from the friend list: the
// endpoint degrades to a fixed failure result instead.
func TestFriendListDegradesOnStoreFailure(t *testing.T) {
	ts, st, _ := startTestServer(t)
	token := registerUser(t, ts, "carol")

	st.Close()

	resp := doAuthed(t, ts, token, http.MethodGet, "/api/friends", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("degraded list: unexpected status %d", resp.StatusCode)
	}

	var list FriendListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode degraded list: %v", err)
	}
	if list.Success || list.Status != 400 || list.Message != "Something went wrong" {
		t.Fatalf("unexpected degraded payload: %+v", list)
	}
}
