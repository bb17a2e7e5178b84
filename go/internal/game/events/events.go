package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type names an event on the wire.
type Type string

// Inbound (client to server) events.
const (
	TypeCreateRoom   Type = "create-room"
	TypeJoinRoom     Type = "join-room"
	TypeStartGame    Type = "start-game"
	TypeSelectLetter Type = "select-letter"
	TypePassTurn     Type = "pass-turn"
)

// Outbound (server to client or room) events.
const (
	TypeRoomCreated    Type = "room-created"
	TypeRoomJoined     Type = "room-joined"
	TypePlayerJoined   Type = "player-joined"
	TypeError          Type = "error"
	TypeGameStarted    Type = "game-started"
	TypeLetterSelected Type = "letter-selected"
	TypeTurnChanged    Type = "turn-changed"
	TypeGameComplete   Type = "game-complete"
	TypePlayerLost     Type = "player-lost"
	TypePlayerLeft     Type = "player-left"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Event Type            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomEvent is an outbound event as mirrored to the event bus.
type RoomEvent struct {
	ID        string          `json:"id"`
	RoomID    string          `json:"roomId"`
	Event     Type            `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Marshal builds the envelope for an event and its wire frame.
func Marshal(event Type, payload any) (Message, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	msg := Message{Event: event, Data: data}
	frame, err := json.Marshal(msg)
	if err != nil {
		return Message{}, nil, fmt.Errorf("marshal %s frame: %w", event, err)
	}
	return msg, frame, nil
}

// Encode marshals an event into a wire frame.
func Encode(event Type, payload any) ([]byte, error) {
	_, frame, err := Marshal(event, payload)
	return frame, err
}
