package gateway

import (
	"encoding/json"
	"errors"

	"github.com/mcdev12/letterturn/go/internal/game/events"
	"github.com/mcdev12/letterturn/go/internal/game/turn"
	"github.com/rs/zerolog/log"
)

// TurnApp is the slice of the game engine the router drives.
type TurnApp interface {
	CreateRoom(connID, playerName string) error
	JoinRoom(connID, roomID, playerName string) error
	StartGame(connID, roomID, theme string) error
	SelectLetter(connID, roomID, letter string) error
	PassTurn(connID, roomID string) error
	Disconnect(connID string)
}

// Router decodes inbound frames and dispatches them to the engine.
type Router struct {
	app TurnApp
}

// NewRouter creates a router for app.
func NewRouter(app TurnApp) *Router {
	return &Router{app: app}
}

// HandleMessage decodes one frame. Malformed frames and unknown events are
// logged and dropped without a reply.
func (r *Router) HandleMessage(connID string, message []byte) {
	var msg events.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Str("connection_id", connID).Msg("dropping malformed frame")
		return
	}

	var err error
	switch msg.Event {
	case events.TypeCreateRoom:
		var p events.CreateRoomPayload
		if err = decode(msg.Data, &p); err == nil {
			err = r.app.CreateRoom(connID, p.PlayerName)
		}
	case events.TypeJoinRoom:
		var p events.JoinRoomPayload
		if err = decode(msg.Data, &p); err == nil {
			err = r.app.JoinRoom(connID, p.RoomID, p.PlayerName)
		}
	case events.TypeStartGame:
		var p events.StartGamePayload
		if err = decode(msg.Data, &p); err == nil {
			err = r.app.StartGame(connID, p.RoomID, p.Theme)
		}
	case events.TypeSelectLetter:
		var p events.SelectLetterPayload
		if err = decode(msg.Data, &p); err == nil {
			err = r.app.SelectLetter(connID, p.RoomID, p.Letter)
		}
	case events.TypePassTurn:
		var p events.PassTurnPayload
		if err = decode(msg.Data, &p); err == nil {
			err = r.app.PassTurn(connID, p.RoomID)
		}
	default:
		log.Warn().
			Str("connection_id", connID).
			Str("event_type", string(msg.Event)).
			Msg("dropping unknown event")
		return
	}

	if err == nil {
		return
	}
	var rejected turn.Error
	if errors.As(err, &rejected) {
		// A client rejection; the engine decides whether the client hears about it.
		log.Debug().Err(err).Str("connection_id", connID).Str("event_type", string(msg.Event)).Msg("event rejected")
		return
	}
	log.Warn().Err(err).Str("connection_id", connID).Str("event_type", string(msg.Event)).Msg("failed to handle event")
}

// HandleDisconnect removes the connection's player from whatever room it is in.
func (r *Router) HandleDisconnect(connID string) {
	r.app.Disconnect(connID)
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
