// Package eventbus mirrors room events onto a message bus for consumers
// outside the gateway process.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/letterturn/go/internal/game/events"
)

// Publisher mirrors one outbound room event.
type Publisher interface {
	Publish(ctx context.Context, roomID string, event events.Type, payload json.RawMessage) error
	Close()
}

// NopPublisher drops everything. It is used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, events.Type, json.RawMessage) error {
	return nil
}

func (NopPublisher) Close() {}

// Subject returns the bus subject for a room.
func Subject(prefix, roomID string) string {
	return prefix + "." + roomID
}

func newRoomEvent(roomID string, event events.Type, payload json.RawMessage, now time.Time) events.RoomEvent {
	return events.RoomEvent{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Event:     event,
		Timestamp: now.UTC(),
		Data:      payload,
	}
}
