package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dicode-app/dicode-server/internal/proto"
	"github.com/dicode-app/dicode-server/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_room: %v", err)
		os.Exit(1)
	}
}

type wsSender struct {
	conn *websocket.Conn
}

func (s *wsSender) Send(ctx context.Context, msg proto.Inbound) error {
	return wsjson.Write(ctx, s.conn, msg)
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "JWT token from /api/login")
	room := flag.String("room", "", "room id to enter")
	flag.Parse()

	if *token == "" || *room == "" {
		return errors.New("both -token and -room are required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	helloPayload, err := json.Marshal(proto.HelloData{Token: *token, Protocol: proto.ProtocolVersion})
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeHello, Data: helloPayload}); err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	proj := session.NewProjection(proto.UserData{}, session.RoomState{ID: *room})
	ctrl := session.NewController(&wsSender{conn: conn}, proj, func() {
		fmt.Println("left the room")
		cancel()
	})

	if err := ctrl.Enter(ctx); err != nil {
		return fmt.Errorf("enter room: %w", err)
	}

	fmt.Printf("Connected to %s, room %s\n", *addr, *room)
	fmt.Println("Commands: /members /pending /accept <id> /reject <id> /kick <id> /role <id> <viewer|editor>")
	fmt.Println("Anything else is sent as a content update. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn, ctrl)
	}()

	inputLoop(ctx, ctrl)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, ctrl *session.Controller) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
			fmt.Printf("server error: %s (%s)\n", outbound.Error.Msg, outbound.Error.Code)
			continue
		}

		if err := ctrl.Handle(outbound); err != nil {
			log.Printf("handle %s: %v", outbound.Event, err)
			continue
		}

		switch outbound.Event {
		case proto.EventGiveReq:
			var data proto.GiveReqData
			if err := json.Unmarshal(outbound.Data, &data); err == nil {
				fmt.Printf("join request from %s (id %d): /accept or /reject\n", data.UserData.Username, data.UserData.ID)
			}
		case proto.EventJoinedRoom, proto.EventJoinedRoomLegacy:
			var data proto.JoinedRoomData
			if err := json.Unmarshal(outbound.Data, &data); err == nil {
				fmt.Printf("%s joined as %s\n", data.User.Username, data.Role)
			}
		case proto.EventRoomUpdated:
			var data proto.RoomUpdatedData
			if err := json.Unmarshal(outbound.Data, &data); err == nil {
				fmt.Printf("user %d left the room\n", data.UserID)
			}
		case proto.EventRoleUpdated:
			var data proto.RoleUpdatedData
			if err := json.Unmarshal(outbound.Data, &data); err == nil {
				fmt.Printf("user %d is now %s\n", data.UserID, data.Role)
			}
		case proto.EventCodeChange, proto.EventLatestCode:
			var data proto.CodeData
			if err := json.Unmarshal(outbound.Data, &data); err == nil {
				fmt.Printf("content: %s\n", string(data.Code))
			}
		}
	}
}

func inputLoop(ctx context.Context, ctrl *session.Controller) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := dispatch(ctx, ctrl, text); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func dispatch(ctx context.Context, ctrl *session.Controller, text string) error {
	if !strings.HasPrefix(text, "/") {
		code, err := json.Marshal(text)
		if err != nil {
			return err
		}
		return ctrl.SendContent(ctx, code)
	}

	fields := strings.Fields(text)
	proj := ctrl.Projection()

	switch fields[0] {
	case "/members":
		for _, m := range proj.Members() {
			fmt.Printf("  %d %s (%s)\n", m.User.ID, m.User.Username, m.Role)
		}
		return nil
	case "/pending":
		for _, u := range proj.Pending() {
			fmt.Printf("  %d %s\n", u.ID, u.Username)
		}
		return nil
	case "/accept":
		if len(fields) != 2 {
			fmt.Println("usage: /accept <id>")
			return nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("bad user id")
			return nil
		}
		for _, u := range proj.Pending() {
			if u.ID == id {
				return ctrl.Accept(ctx, u)
			}
		}
		fmt.Println("no such pending request")
		return nil
	case "/reject":
		if len(fields) != 2 {
			fmt.Println("usage: /reject <id>")
			return nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("bad user id")
			return nil
		}
		return ctrl.Reject(ctx, id)
	case "/kick":
		if len(fields) != 2 {
			fmt.Println("usage: /kick <id>")
			return nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("bad user id")
			return nil
		}
		return ctrl.Kick(ctx, id)
	case "/role":
		if len(fields) != 3 {
			fmt.Println("usage: /role <id> <viewer|editor>")
			return nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			fmt.Println("bad user id")
			return nil
		}
		return ctrl.SetRole(ctx, id, fields[2])
	default:
		fmt.Println("unknown command")
		return nil
	}
}
