package turn

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/letterturn/go/internal/game/deck"
	"github.com/mcdev12/letterturn/go/internal/game/events"
	"github.com/mcdev12/letterturn/go/internal/game/rooms"
	"github.com/mcdev12/letterturn/go/internal/models"
	"github.com/rs/zerolog/log"
)

// maxRoomCodeAttempts bounds collision retries when minting a room code.
const maxRoomCodeAttempts = 16

// RoomStore defines what the app needs from the room store
type RoomStore interface {
	Create(room *models.Room) error
	Get(id string) (*models.Room, bool)
	Delete(id string)
	ForEach(fn func(room *models.Room))
	List() []*models.Room
}

// TimerRegistry defines what the app needs from the turn timer registry
type TimerRegistry interface {
	Schedule(roomID, playerID string, d time.Duration, onFire func())
	Cancel(roomID, playerID string)
	CancelRoom(roomID string)
}

// LetterDeck produces a fresh shuffled board.
type LetterDeck interface {
	Generate() []string
}

// Broadcaster delivers outbound events. Implementations must not block:
// the app calls it while holding a room lock.
type Broadcaster interface {
	SendTo(connID string, event events.Type, payload any)
	BroadcastToRoom(roomID string, event events.Type, payload any)
	JoinRoom(connID, roomID string)
	LeaveRoom(connID, roomID string)
}

// Config holds the game constants the app needs.
type Config struct {
	TurnTimeLimit  time.Duration
	RoomCodeLength int
}

// App is the room and turn state machine. Each handler locks the addressed
// room for its whole read, validate, mutate and emit sequence; timer fires
// go through the same lock.
type App struct {
	store  RoomStore
	timers TimerRegistry
	deck   LetterDeck
	out    Broadcaster
	clock  clockwork.Clock
	config Config

	intn func(n int) int
}

// NewApp creates a new turn App
func NewApp(store RoomStore, timers TimerRegistry, deck LetterDeck, out Broadcaster, clock clockwork.Clock, config Config) *App {
	return &App{
		store:  store,
		timers: timers,
		deck:   deck,
		out:    out,
		clock:  clock,
		config: config,
		intn:   rand.IntN,
	}
}

// CreateRoom opens a new room with the requester as its host.
func (a *App) CreateRoom(connID, playerName string) error {
	player := models.Player{ID: connID, Name: playerName, IsHost: true}

	var room *models.Room
	for attempt := 0; attempt < maxRoomCodeAttempts; attempt++ {
		candidate := models.NewRoom(deck.NewRoomCode(a.config.RoomCodeLength), player, a.deck.Generate(), a.config.TurnTimeLimit)
		candidate.Lock()
		err := a.store.Create(candidate)
		if err == nil {
			room = candidate
			break
		}
		candidate.Unlock()
		if !errors.Is(err, rooms.ErrRoomExists) {
			return a.reject(connID, err)
		}
		log.Debug().Str("room_id", candidate.ID).Msg("room code collision, regenerating")
	}
	if room == nil {
		return a.reject(connID, errRoomCodesExhausted)
	}
	defer room.Unlock()

	a.out.JoinRoom(connID, room.ID)
	a.out.SendTo(connID, events.TypeRoomCreated, events.RoomCreatedPayload{
		RoomID: room.ID,
		Player: player,
		Room:   room.Snapshot(a.clock.Now()),
	})

	log.Info().
		Str("room_id", room.ID).
		Str("player_id", connID).
		Str("player_name", playerName).
		Msg("room created")
	return nil
}

// JoinRoom appends the requester to an existing room as a non-host player.
func (a *App) JoinRoom(connID, roomID, playerName string) error {
	room, err := a.lockRoom(roomID)
	if err != nil {
		return a.reject(connID, err)
	}
	defer room.Unlock()

	// A repeated join from a member only refreshes its view of the room.
	if existing, ok := room.Player(connID); ok {
		a.out.SendTo(connID, events.TypeRoomJoined, events.RoomJoinedPayload{
			Player: existing,
			Room:   room.Snapshot(a.clock.Now()),
		})
		log.Debug().
			Str("room_id", room.ID).
			Str("player_id", connID).
			Msg("repeated join from existing member")
		return nil
	}

	player := models.Player{ID: connID, Name: playerName}
	room.Players = append(room.Players, player)

	a.out.JoinRoom(connID, room.ID)
	a.out.SendTo(connID, events.TypeRoomJoined, events.RoomJoinedPayload{
		Player: player,
		Room:   room.Snapshot(a.clock.Now()),
	})
	a.out.BroadcastToRoom(room.ID, events.TypePlayerJoined, events.PlayerJoinedPayload{
		Player:  player,
		Players: room.PlayerList(),
	})

	log.Info().
		Str("room_id", room.ID).
		Str("player_id", connID).
		Str("player_name", playerName).
		Int("players", len(room.Players)).
		Msg("player joined room")
	return nil
}

// StartGame begins (or restarts) a game. Requests from anyone but the host
// are dropped without a reply.
func (a *App) StartGame(connID, roomID, theme string) error {
	room, err := a.lockRoom(roomID)
	if err != nil {
		// Only join-room reports an unknown room to the client.
		return err
	}
	defer room.Unlock()

	player, ok := room.Player(connID)
	if !ok || !player.IsHost {
		log.Debug().
			Str("room_id", room.ID).
			Str("player_id", connID).
			Msg("ignoring start-game from non-host")
		return nil
	}

	theme = strings.TrimSpace(theme)
	if theme == "" {
		return a.reject(connID, ErrThemeRequired)
	}

	for _, p := range room.Players {
		a.timers.Cancel(room.ID, p.ID)
	}

	room.CurrentTheme = theme
	room.UsedLetters = []string{}
	room.SelectedLetter = ""
	room.GameOver = false
	room.Letters = a.deck.Generate()
	room.ActivePlayerID = room.Players[a.intn(len(room.Players))].ID
	a.stampTurn(room)

	a.out.BroadcastToRoom(room.ID, events.TypeGameStarted, events.GameStartedPayload{
		Theme:          theme,
		ActivePlayerID: room.ActivePlayerID,
		Letters:        append([]string(nil), room.Letters...),
	})
	a.scheduleTurn(room)

	log.Info().
		Str("room_id", room.ID).
		Str("theme", theme).
		Str("active_player_id", room.ActivePlayerID).
		Msg("game started")
	return nil
}

// SelectLetter records the active player's provisional letter. The turn
// timer keeps running.
func (a *App) SelectLetter(connID, roomID, letter string) error {
	room, err := a.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if room.GameOver {
		return nil
	}
	if room.ActivePlayerID != connID {
		return a.reject(connID, ErrNotYourTurn)
	}
	if room.IsUsed(letter) {
		return a.reject(connID, ErrLetterAlreadyUsed)
	}
	if !room.HasLetter(letter) {
		return a.reject(connID, ErrInvalidLetter)
	}

	room.SelectedLetter = letter
	a.out.BroadcastToRoom(room.ID, events.TypeLetterSelected, events.LetterSelectedPayload{
		PlayerID: connID,
		Letter:   letter,
	})
	return nil
}

// PassTurn consumes the selected letter and hands the turn to the next
// player, or completes the game when the board is exhausted.
func (a *App) PassTurn(connID, roomID string) error {
	room, err := a.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Unlock()

	if room.GameOver {
		return nil
	}
	if room.ActivePlayerID != connID {
		return a.reject(connID, ErrNotYourTurn)
	}
	if room.SelectedLetter == "" {
		return a.reject(connID, ErrLetterNotSelected)
	}

	a.timers.Cancel(room.ID, connID)

	used := room.SelectedLetter
	room.UsedLetters = append(room.UsedLetters, used)
	room.SelectedLetter = ""

	if len(room.UsedLetters) >= len(room.Letters) {
		room.GameOver = true
		a.out.BroadcastToRoom(room.ID, events.TypeGameComplete, events.GameCompletePayload{AllLettersUsed: true})
		log.Info().Str("room_id", room.ID).Msg("all letters used, game complete")
		return nil
	}

	// Rotation is positional from the passing player's current index.
	idx := room.IndexOf(connID)
	next := room.Players[(idx+1)%len(room.Players)]
	room.ActivePlayerID = next.ID
	a.stampTurn(room)

	a.out.BroadcastToRoom(room.ID, events.TypeTurnChanged, events.TurnChangedPayload{
		PreviousPlayerID: connID,
		ActivePlayerID:   next.ID,
		UsedLetter:       used,
	})
	a.scheduleTurn(room)

	log.Debug().
		Str("room_id", room.ID).
		Str("previous_player_id", connID).
		Str("active_player_id", next.ID).
		Str("used_letter", used).
		Msg("turn passed")
	return nil
}

// Disconnect removes a closed connection from every room it belongs to and
// repairs the turn state of those rooms.
func (a *App) Disconnect(connID string) {
	a.store.ForEach(func(room *models.Room) {
		room.Lock()
		defer room.Unlock()

		if room.Closed() {
			return
		}
		a.removePlayer(room, connID)
	})
}

// removePlayer handles one room of a disconnect sweep. The room lock must be held.
func (a *App) removePlayer(room *models.Room, connID string) {
	departing, ok := room.Player(connID)
	if !ok {
		return
	}
	wasActive := room.ActivePlayerID == connID

	a.timers.Cancel(room.ID, connID)
	a.out.LeaveRoom(connID, room.ID)
	idx := room.RemovePlayer(connID)

	logger := log.With().Str("room_id", room.ID).Str("player_id", connID).Logger()

	if len(room.Players) == 0 {
		room.Close()
		a.store.Delete(room.ID)
		a.timers.CancelRoom(room.ID)
		logger.Info().Msg("last player left, room deleted")
		return
	}

	if wasActive && !room.GameOver {
		next := room.Players[idx%len(room.Players)]
		room.ActivePlayerID = next.ID
		room.SelectedLetter = ""
		a.stampTurn(room)
		a.scheduleTurn(room)

		a.out.BroadcastToRoom(room.ID, events.TypeTurnChanged, events.TurnChangedPayload{
			PreviousPlayerID: connID,
			ActivePlayerID:   next.ID,
			UsedLetter:       "",
		})
		logger.Info().Str("active_player_id", next.ID).Msg("active player left, turn advanced")
	} else if wasActive {
		// Finished game: nobody takes over, but the id must not dangle.
		room.ActivePlayerID = ""
	}

	var newHostID string
	if departing.IsHost {
		room.Players[0].IsHost = true
		newHostID = room.Players[0].ID
		logger.Info().Str("new_host_id", newHostID).Msg("host left, promoted new host")
	}

	a.out.BroadcastToRoom(room.ID, events.TypePlayerLeft, events.PlayerLeftPayload{
		PlayerID:  connID,
		Players:   room.PlayerList(),
		NewHostID: newHostID,
	})
	logger.Info().Int("players", len(room.Players)).Msg("player left room")
}

// resolveTimeout ends the game when the player's turn ran out. The turn may
// have moved on between the timer firing and this call, even back to the
// same player; started identifies the turn the timer was armed for.
func (a *App) resolveTimeout(roomID, playerID string, started *time.Time) {
	room, ok := a.store.Get(roomID)
	if !ok {
		return
	}
	room.Lock()
	defer room.Unlock()

	if room.Closed() || room.GameOver || room.ActivePlayerID != playerID || room.CurrentTurnStartTime != started {
		log.Debug().
			Str("room_id", roomID).
			Str("player_id", playerID).
			Msg("dropping stale turn timeout")
		return
	}

	room.GameOver = true
	a.out.BroadcastToRoom(room.ID, events.TypePlayerLost, events.PlayerLostPayload{PlayerID: playerID})
	a.timers.Cancel(room.ID, playerID)

	log.Info().
		Str("room_id", roomID).
		Str("player_id", playerID).
		Msg("turn timed out, player lost")
}

// Snapshot returns the current view of a room.
func (a *App) Snapshot(roomID string) (models.RoomSnapshot, bool) {
	room, err := a.lockRoom(roomID)
	if err != nil {
		return models.RoomSnapshot{}, false
	}
	defer room.Unlock()
	return room.Snapshot(a.clock.Now()), true
}

// ActiveRooms lists every live room.
func (a *App) ActiveRooms() []models.RoomSummary {
	list := a.store.List()
	summaries := make([]models.RoomSummary, 0, len(list))
	for _, room := range list {
		room.Lock()
		if !room.Closed() {
			summaries = append(summaries, room.Summary())
		}
		room.Unlock()
	}
	return summaries
}

// lockRoom resolves a room code and returns the room locked.
func (a *App) lockRoom(roomID string) (*models.Room, error) {
	room, ok := a.store.Get(strings.ToUpper(strings.TrimSpace(roomID)))
	if !ok {
		return nil, ErrRoomNotFound
	}
	room.Lock()
	if room.Closed() {
		room.Unlock()
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (a *App) stampTurn(room *models.Room) {
	now := a.clock.Now()
	room.CurrentTurnStartTime = &now
}

// scheduleTurn arms the timeout for the room's active player.
func (a *App) scheduleTurn(room *models.Room) {
	roomID, playerID, started := room.ID, room.ActivePlayerID, room.CurrentTurnStartTime
	a.timers.Schedule(roomID, playerID, room.TimeLimit, func() {
		a.resolveTimeout(roomID, playerID, started)
	})
}

// reject reports err to the requester when it is a client-facing rejection.
func (a *App) reject(connID string, err error) error {
	var gameErr Error
	if errors.As(err, &gameErr) {
		a.out.SendTo(connID, events.TypeError, events.ErrorPayload{Message: gameErr.Error()})
		log.Debug().
			Str("player_id", connID).
			Str("reason", gameErr.Error()).
			Msg("request rejected")
	}
	return err
}
