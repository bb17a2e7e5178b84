package events

import "github.com/mcdev12/letterturn/go/internal/models"

// Inbound payloads.

type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type StartGamePayload struct {
	RoomID string `json:"roomId"`
	Theme  string `json:"theme"`
}

type SelectLetterPayload struct {
	RoomID string `json:"roomId"`
	Letter string `json:"letter"`
}

type PassTurnPayload struct {
	RoomID string `json:"roomId"`
}

// Outbound payloads.

// RoomCreatedPayload is sent to the creator only.
type RoomCreatedPayload struct {
	RoomID string              `json:"roomId"`
	Player models.Player       `json:"player"`
	Room   models.RoomSnapshot `json:"room"`
}

// RoomJoinedPayload is sent to the joining connection only.
type RoomJoinedPayload struct {
	Player models.Player       `json:"player"`
	Room   models.RoomSnapshot `json:"room"`
}

// PlayerJoinedPayload is broadcast to the room, joiner included.
type PlayerJoinedPayload struct {
	Player  models.Player   `json:"player"`
	Players []models.Player `json:"players"`
}

// ErrorPayload reports a rejected request to its sender.
type ErrorPayload struct {
	Message string `json:"message"`
}

type GameStartedPayload struct {
	Theme          string   `json:"theme"`
	ActivePlayerID string   `json:"activePlayerId"`
	Letters        []string `json:"letters"`
}

type LetterSelectedPayload struct {
	PlayerID string `json:"playerId"`
	Letter   string `json:"letter"`
}

// TurnChangedPayload announces a new active player. UsedLetter is empty when
// the turn moved because the previous player disconnected.
type TurnChangedPayload struct {
	PreviousPlayerID string `json:"previousPlayerId"`
	ActivePlayerID   string `json:"activePlayerId"`
	UsedLetter       string `json:"usedLetter"`
}

type GameCompletePayload struct {
	AllLettersUsed bool `json:"allLettersUsed"`
}

type PlayerLostPayload struct {
	PlayerID string `json:"playerId"`
}

type PlayerLeftPayload struct {
	PlayerID  string          `json:"playerId"`
	Players   []models.Player `json:"players"`
	NewHostID string          `json:"newHostId,omitempty"`
}
