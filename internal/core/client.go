package core

import "sync"

// Client is a connected participant as seen by the core layer.
// One Client per websocket connection; a user may hold several.
type Client struct {
	ConnID string
	User   UserRef

	Commands chan *Command
	Events   chan *Event

	// RoomID is the room this connection is registered to. Owned by
	// the hub loop; transport code must not touch it.
	RoomID string

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(connID string, user UserRef) *Client {
	return &Client{
		ConnID:   connID,
		User:     user,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
		done:     make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// send delivers an event without blocking the hub loop.
func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer; at-least-once repair comes from the
		// next broadcast or a latest-state request.
	}
}
