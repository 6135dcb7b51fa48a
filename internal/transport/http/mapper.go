package http

import (
	"encoding/json"

	"github.com/dicode-app/dicode-server/internal/core"
	"github.com/dicode-app/dicode-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		// The handshake is consumed by the handler before the command
		// loop starts; a second one is a protocol violation.
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unexpected hello"}, nil
	case proto.InboundTypeRegister:
		var reg proto.RegisterData
		if err := json.Unmarshal(inbound.Data, &reg); err != nil {
			return nil, nil, err
		}
		if reg.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandRegister,
			RoomID: reg.RoomID,
		}, nil, nil
	case proto.InboundTypeJoinReq:
		var req proto.JoinReqData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:   core.CommandJoinRequest,
			RoomID: req.RoomID,
		}, nil, nil
	case proto.InboundTypeJoinRoom:
		var accept proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &accept); err != nil {
			return nil, nil, err
		}
		if accept.User.ID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "user is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandAcceptJoin,
			RoomID: accept.RoomID,
			User:   userRefFromData(accept.User),
		}, nil, nil
	case proto.InboundTypeRejectRoom:
		var reject proto.RejectRoomData
		if err := json.Unmarshal(inbound.Data, &reject); err != nil {
			return nil, nil, err
		}
		if reject.UserID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandRejectJoin,
			UserID: reject.UserID,
		}, nil, nil
	case proto.InboundTypeKickRoom:
		var kick proto.KickRoomData
		if err := json.Unmarshal(inbound.Data, &kick); err != nil {
			return nil, nil, err
		}
		if kick.UserID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "userId is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandKick,
			UserID: kick.UserID,
		}, nil, nil
	case proto.InboundTypeSetRole:
		var sr proto.SetRoleData
		if err := json.Unmarshal(inbound.Data, &sr); err != nil {
			return nil, nil, err
		}
		if !core.ValidAssignableRole(core.Role(sr.Role)) {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid role"}, nil
		}
		return &core.Command{
			Kind:   core.CommandSetRole,
			UserID: sr.UserID,
			Role:   core.Role(sr.Role),
		}, nil, nil
	case proto.InboundTypeCodeChange:
		var code proto.CodeData
		if err := json.Unmarshal(inbound.Data, &code); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:    core.CommandContentChange,
			Content: code.Code,
		}, nil, nil
	case proto.InboundTypeNeedLatestCode:
		return &core.Command{
			Kind: core.CommandNeedLatestContent,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventGiveRequest:
		return eventOutbound(proto.EventGiveReq, proto.GiveReqData{
			UserData: userDataFromRef(event.User),
		})
	case core.EventMemberJoined:
		return eventOutbound(proto.EventJoinedRoom, proto.JoinedRoomData{
			User: userDataFromRef(event.User),
			Role: string(event.Role),
		})
	case core.EventMemberLeft:
		return eventOutbound(proto.EventRoomUpdated, proto.RoomUpdatedData{
			UserID: event.UserID,
		})
	case core.EventRoleUpdated:
		return eventOutbound(proto.EventRoleUpdated, proto.RoleUpdatedData{
			UserID: event.UserID,
			Role:   string(event.Role),
		})
	case core.EventNavigateAway:
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventNavigateRoom}
	case core.EventNoHost:
		return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventNoHost}
	case core.EventContentChanged:
		return eventOutbound(proto.EventCodeChange, proto.CodeData{Code: event.Content})
	case core.EventLatestContent:
		return eventOutbound(proto.EventLatestCode, proto.CodeData{Code: event.Content})
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	raw, _ := json.Marshal(data)
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: name,
		Data:  raw,
	}
}

func userDataFromRef(u core.UserRef) proto.UserData {
	return proto.UserData{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
	}
}

func userRefFromData(u proto.UserData) core.UserRef {
	return core.UserRef{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
	}
}
