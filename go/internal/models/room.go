package models

import (
	"slices"
	"sync"
	"time"
)

// RoomStatus defines the lifecycle state of a room.
type RoomStatus string

const (
	RoomStatusLobby      RoomStatus = "LOBBY"
	RoomStatusInProgress RoomStatus = "IN_PROGRESS"
	RoomStatusGameOver   RoomStatus = "GAME_OVER"
)

// Room is a single game session. All fields are guarded by the room lock;
// callers must hold Lock while reading or writing them.
type Room struct {
	mu     sync.Mutex
	closed bool

	ID                   string
	Players              []Player // join order, defines turn rotation
	CurrentTheme         string
	Letters              []string
	UsedLetters          []string
	SelectedLetter       string
	ActivePlayerID       string
	CurrentTurnStartTime *time.Time
	TimeLimit            time.Duration
	GameOver             bool
}

// NewRoom creates a room in the lobby state with host as its only player.
func NewRoom(id string, host Player, letters []string, timeLimit time.Duration) *Room {
	host.IsHost = true
	return &Room{
		ID:          id,
		Players:     []Player{host},
		Letters:     letters,
		UsedLetters: []string{},
		TimeLimit:   timeLimit,
	}
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Close marks the room as destroyed. Handlers that were waiting on the lock
// must treat a closed room as missing.
func (r *Room) Close() { r.closed = true }

// Closed reports whether the room has been destroyed.
func (r *Room) Closed() bool { return r.closed }

// Status derives the lifecycle state from the turn fields.
func (r *Room) Status() RoomStatus {
	switch {
	case r.GameOver:
		return RoomStatusGameOver
	case r.ActivePlayerID != "":
		return RoomStatusInProgress
	default:
		return RoomStatusLobby
	}
}

// IndexOf returns the position of a player in join order, or -1.
func (r *Room) IndexOf(playerID string) int {
	for i, p := range r.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id.
func (r *Room) Player(playerID string) (Player, bool) {
	if i := r.IndexOf(playerID); i >= 0 {
		return r.Players[i], true
	}
	return Player{}, false
}

// HostID returns the id of the current host, or "" for an empty room.
func (r *Room) HostID() string {
	for _, p := range r.Players {
		if p.IsHost {
			return p.ID
		}
	}
	return ""
}

// RemovePlayer drops a player and returns the index it occupied, or -1.
func (r *Room) RemovePlayer(playerID string) int {
	i := r.IndexOf(playerID)
	if i < 0 {
		return -1
	}
	r.Players = append(r.Players[:i:i], r.Players[i+1:]...)
	return i
}

// HasLetter reports whether letter is on the board.
func (r *Room) HasLetter(letter string) bool {
	return slices.Contains(r.Letters, letter)
}

// IsUsed reports whether letter was already consumed this game.
func (r *Room) IsUsed(letter string) bool {
	return slices.Contains(r.UsedLetters, letter)
}

// PlayerList returns a copy of the players safe to hand to other goroutines.
func (r *Room) PlayerList() []Player {
	out := make([]Player, len(r.Players))
	copy(out, r.Players)
	return out
}

// Snapshot captures the room as a value that can be serialized after the
// lock is released.
func (r *Room) Snapshot(now time.Time) RoomSnapshot {
	s := RoomSnapshot{
		ID:          r.ID,
		Players:     r.PlayerList(),
		Letters:     append([]string(nil), r.Letters...),
		UsedLetters: append([]string{}, r.UsedLetters...),
		TimeLimit:   r.TimeLimit.Milliseconds(),
		GameOver:    r.GameOver,
		Status:      r.Status(),
	}
	if r.CurrentTheme != "" {
		theme := r.CurrentTheme
		s.CurrentTheme = &theme
	}
	if r.SelectedLetter != "" {
		letter := r.SelectedLetter
		s.SelectedLetter = &letter
	}
	if r.ActivePlayerID != "" {
		active := r.ActivePlayerID
		s.ActivePlayerID = &active
	}
	if r.CurrentTurnStartTime != nil {
		started := *r.CurrentTurnStartTime
		s.CurrentTurnStartTime = &started
		if !r.GameOver {
			s.TimeRemainingMs = remaining(started.Add(r.TimeLimit), now)
		}
	}
	return s
}

// RoomSnapshot is the client-facing view of a room.
type RoomSnapshot struct {
	ID                   string     `json:"id"`
	Players              []Player   `json:"players"`
	CurrentTheme         *string    `json:"currentTheme"`
	Letters              []string   `json:"letters"`
	UsedLetters          []string   `json:"usedLetters"`
	SelectedLetter       *string    `json:"selectedLetter"`
	ActivePlayerID       *string    `json:"activePlayerId"`
	CurrentTurnStartTime *time.Time `json:"currentTurnStartTime"`
	TimeLimit            int64      `json:"timeLimit"` // milliseconds
	GameOver             bool       `json:"gameOver"`
	Status               RoomStatus `json:"status"`
	TimeRemainingMs      int64      `json:"timeRemainingMs"`
}

// RoomSummary is a compact listing entry for live rooms.
type RoomSummary struct {
	ID             string     `json:"id"`
	Status         RoomStatus `json:"status"`
	PlayerCount    int        `json:"playerCount"`
	HostID         string     `json:"hostId"`
	CurrentTheme   string     `json:"currentTheme,omitempty"`
	LettersUsed    int        `json:"lettersUsed"`
	LettersTotal   int        `json:"lettersTotal"`
	ActivePlayerID string     `json:"activePlayerId,omitempty"`
}

// Summary builds the listing entry for the room.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:             r.ID,
		Status:         r.Status(),
		PlayerCount:    len(r.Players),
		HostID:         r.HostID(),
		CurrentTheme:   r.CurrentTheme,
		LettersUsed:    len(r.UsedLetters),
		LettersTotal:   len(r.Letters),
		ActivePlayerID: r.ActivePlayerID,
	}
}

func remaining(deadline, now time.Time) int64 {
	left := deadline.Sub(now).Milliseconds()
	if left < 0 {
		return 0
	}
	return left
}

