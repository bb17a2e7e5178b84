package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/letterturn/go/internal/game/eventbus"
	"github.com/mcdev12/letterturn/go/internal/game/events"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// MessageHandler receives inbound frames and connection closes.
type MessageHandler interface {
	HandleMessage(connID string, message []byte)
	HandleDisconnect(connID string)
}

// ConnectionManager manages WebSocket connections and room membership
type ConnectionManager struct {
	connections map[string]*Connection
	rooms       map[string]map[*Connection]bool
	mu          sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	// Connection configuration
	config ConnectionConfig

	handler   MessageHandler
	publisher eventbus.Publisher

	// Event broadcasting
	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	limiter *rate.Limiter

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	RateLimit       rate.Limit // inbound events per second
	RateBurst       int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage is an encoded event queued for delivery. Recipients are
// resolved when the message is queued so membership changes made after that
// point do not affect it.
type BroadcastMessage struct {
	RoomID  string // empty for direct sends
	Event   events.Type
	Payload json.RawMessage
	Frame   []byte
	Targets []*Connection
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		RateLimit:       20,
		RateBurst:       40,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, publisher eventbus.Publisher) *ConnectionManager {
	if publisher == nil {
		publisher = eventbus.NopPublisher{}
	}
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		rooms:       make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		publisher:   publisher,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// SetHandler installs the inbound message handler. It must be called before
// any connection is accepted.
func (cm *ConnectionManager) SetHandler(h MessageHandler) {
	cm.handler = h
}

// Start begins processing broadcast messages
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case message := <-cm.broadcastCh:
			cm.handleBroadcast(ctx, message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		limiter:     rate.NewLimiter(cm.config.RateLimit, cm.config.RateBurst),
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	cm.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection established")

	return connection, nil
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection from the manager and tells the
// handler it is gone. Only the first call for a connection has any effect.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	if cm.connections[conn.ID] != conn {
		cm.mu.Unlock()
		return
	}
	delete(cm.connections, conn.ID)
	for roomID, members := range cm.rooms {
		if members[conn] {
			delete(members, conn)
			if len(members) == 0 {
				delete(cm.rooms, roomID)
			}
		}
	}
	close(conn.Send)
	cm.mu.Unlock()

	log.Info().
		Str("connection_id", conn.ID).
		Dur("connected_for", time.Since(conn.ConnectedAt)).
		Msg("connection unregistered")

	// The handler calls back into LeaveRoom, so the lock must be released.
	if cm.handler != nil {
		cm.handler.HandleDisconnect(conn.ID)
	}
}

// JoinRoom adds a connection to a room's broadcast group.
func (cm *ConnectionManager) JoinRoom(connID, roomID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	conn, ok := cm.connections[connID]
	if !ok {
		return
	}
	if cm.rooms[roomID] == nil {
		cm.rooms[roomID] = make(map[*Connection]bool)
	}
	cm.rooms[roomID][conn] = true
}

// LeaveRoom removes a connection from a room's broadcast group.
func (cm *ConnectionManager) LeaveRoom(connID, roomID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	members, ok := cm.rooms[roomID]
	if !ok {
		return
	}
	for conn := range members {
		if conn.ID == connID {
			delete(members, conn)
		}
	}
	if len(members) == 0 {
		delete(cm.rooms, roomID)
	}
}

// BroadcastToRoom sends an event to all connections in a room
func (cm *ConnectionManager) BroadcastToRoom(roomID string, event events.Type, payload any) {
	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.rooms[roomID]))
	for conn := range cm.rooms[roomID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	cm.enqueue(roomID, event, payload, targets)
}

// SendTo sends an event to a single connection
func (cm *ConnectionManager) SendTo(connID string, event events.Type, payload any) {
	cm.mu.RLock()
	conn, ok := cm.connections[connID]
	cm.mu.RUnlock()
	if !ok {
		return
	}

	cm.enqueue("", event, payload, []*Connection{conn})
}

func (cm *ConnectionManager) enqueue(roomID string, event events.Type, payload any, targets []*Connection) {
	envelope, frame, err := events.Marshal(event, payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event)).Msg("failed to marshal event for broadcast")
		return
	}

	msg := BroadcastMessage{RoomID: roomID, Event: event, Payload: envelope.Data, Frame: frame, Targets: targets}
	select {
	case cm.broadcastCh <- msg:
	default:
		log.Warn().
			Str("room_id", roomID).
			Str("event_type", string(event)).
			Msg("broadcast channel full, dropping message")
	}
}

// handleBroadcast processes a broadcast message
func (cm *ConnectionManager) handleBroadcast(ctx context.Context, message BroadcastMessage) {
	var slow []*Connection

	cm.mu.RLock()
	for _, conn := range message.Targets {
		// Skip connections that closed after the message was queued.
		if cm.connections[conn.ID] != conn {
			continue
		}
		select {
		case conn.Send <- message.Frame:
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}

	if message.RoomID != "" {
		if err := cm.publisher.Publish(ctx, message.RoomID, message.Event, message.Payload); err != nil {
			log.Error().
				Err(err).
				Str("room_id", message.RoomID).
				Str("event_type", string(message.Event)).
				Msg("failed to mirror event to bus")
		}
	}

	log.Debug().
		Str("event_type", string(message.Event)).
		Str("room_id", message.RoomID).
		Int("connections", len(message.Targets)).
		Msg("event broadcasted")
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	roomCounts := make(map[string]int, len(cm.rooms))
	for roomID, members := range cm.rooms {
		roomCounts[roomID] = len(members)
	}

	return ConnectionStats{
		TotalConnections: len(cm.connections),
		ActiveRooms:      len(cm.rooms),
		RoomConnections:  roomCounts,
	}
}

// ConnectionStats is a point-in-time view of the connection pool.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveRooms      int            `json:"active_rooms"`
	RoomConnections  map[string]int `json:"room_connections"`
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		if !c.limiter.Allow() {
			log.Warn().
				Str("connection_id", c.ID).
				Msg("inbound rate limit exceeded, dropping message")
			continue
		}
		c.handleClientMessage(message)
	}
}

// handleClientMessage processes messages received from the client
func (c *Connection) handleClientMessage(message []byte) {
	if c.Manager.handler == nil {
		return
	}
	c.Manager.handler.HandleMessage(c.ID, message)
}
