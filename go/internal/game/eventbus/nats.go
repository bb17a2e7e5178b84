package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/letterturn/go/internal/game/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig holds connection settings for the NATS mirror.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "game.events"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns the default mirror configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "game.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes room events to core NATS, one subject per room.
type NATSPublisher struct {
	nc     *nats.Conn
	config NATSConfig
}

// NewNATSPublisher connects to NATS.
func NewNATSPublisher(config NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("letterturn-gateway"),
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Str("subject_prefix", config.SubjectPrefix).
		Msg("room event mirror connected")

	return &NATSPublisher{nc: nc, config: config}, nil
}

// Publish sends a room event to <prefix>.<roomID>. Delivery is fire and
// forget; a disconnected client buffers until it reconnects.
func (p *NATSPublisher) Publish(ctx context.Context, roomID string, event events.Type, payload json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(newRoomEvent(roomID, event, payload, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal room event: %w", err)
	}

	if err := p.nc.Publish(Subject(p.config.SubjectPrefix, roomID), data); err != nil {
		return fmt.Errorf("publish room event: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.Error().Err(err).Msg("failed to drain NATS connection")
		p.nc.Close()
	}
}
