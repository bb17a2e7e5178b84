package models

// Player is a connected participant of a room. ID is the connection identity
// and is never reused once the connection closes.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}
