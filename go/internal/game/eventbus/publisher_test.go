package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/letterturn/go/internal/game/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "game.events.ABC123", Subject("game.events", "ABC123"))
}

func TestNewRoomEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	payload := json.RawMessage(`{"letter":"K"}`)

	ev := newRoomEvent("ROOM01", events.TypeLetterSelected, payload, now)

	_, err := uuid.Parse(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "ROOM01", ev.RoomID)
	assert.Equal(t, events.TypeLetterSelected, ev.Event)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())
	assert.True(t, ev.Timestamp.Equal(now))

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "letter-selected", decoded["event"])
	assert.Equal(t, "ROOM01", decoded["roomId"])
	assert.Equal(t, map[string]any{"letter": "K"}, decoded["data"])
}

func TestNewRoomEventIDsAreUnique(t *testing.T) {
	a := newRoomEvent("R", events.TypeTurnChanged, nil, time.Now())
	b := newRoomEvent("R", events.TypeTurnChanged, nil, time.Now())
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "R", events.TypeGameStarted, json.RawMessage(`{}`)))
	p.Close()
}

func TestDefaultNATSConfig(t *testing.T) {
	cfg := DefaultNATSConfig()
	assert.Equal(t, "game.events", cfg.SubjectPrefix)
	assert.Equal(t, -1, cfg.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.ReconnectWait)
}
