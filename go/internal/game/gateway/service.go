package gateway

import (
	"context"
	"net/http"

	"github.com/mcdev12/letterturn/go/internal/game/eventbus"
	"github.com/rs/zerolog/log"
)

// Service is the game gateway: it owns client connections and routes their
// events to the engine.
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	publisher         eventbus.Publisher
}

// Config holds configuration for the gateway service
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates the gateway. The engine needs the connection manager as
// its broadcaster, so the engine is attached afterwards with Attach.
func NewService(config Config, publisher eventbus.Publisher) *Service {
	if publisher == nil {
		publisher = eventbus.NopPublisher{}
	}
	cm := NewConnectionManager(config.ConnectionConfig, publisher)
	return &Service{
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm),
		publisher:         publisher,
	}
}

// Broadcaster returns the connection manager for the engine to emit through.
func (s *Service) Broadcaster() *ConnectionManager {
	return s.connectionManager
}

// Attach wires the engine in. It must be called before Start.
func (s *Service) Attach(app TurnApp, provider StateProvider) {
	s.connectionManager.SetHandler(NewRouter(app))
	s.stateHandler = NewStateHandler(provider)
}

// Start begins the gateway service and blocks until ctx is done
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting game gateway service")

	go s.connectionManager.Start(ctx)

	<-ctx.Done()

	log.Info().Msg("game gateway service shutting down")
	return s.Stop()
}

// Stop releases the event bus connection.
func (s *Service) Stop() error {
	s.publisher.Close()
	log.Info().Msg("game gateway service stopped")
	return nil
}

// RegisterRoutes registers the WebSocket and state HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	if s.stateHandler != nil {
		s.stateHandler.RegisterStateRoutes(mux)
	}
	log.Info().Msg("game gateway routes registered")
}

// GetStats returns statistics about the gateway service
func (s *Service) GetStats() ConnectionStats {
	return s.connectionManager.GetConnectionStats()
}
