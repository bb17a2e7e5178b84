package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mcdev12/letterturn/go/internal/models"
	"github.com/rs/zerolog/log"
)

// StateProvider exposes read-only room state
type StateProvider interface {
	Snapshot(roomID string) (models.RoomSnapshot, bool)
	ActiveRooms() []models.RoomSummary
}

// StateHandler handles HTTP requests for room state
type StateHandler struct {
	stateProvider StateProvider
}

// NewStateHandler creates a new state handler
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
	}
}

// HandleGetRoomState handles GET /api/rooms/{id}/state
func (h *StateHandler) HandleGetRoomState(w http.ResponseWriter, r *http.Request) {
	roomID := strings.ToUpper(strings.TrimSpace(r.PathValue("id")))
	if roomID == "" {
		http.Error(w, "Room ID is required", http.StatusBadRequest)
		return
	}

	state, ok := h.stateProvider.Snapshot(roomID)
	if !ok {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	writeJSON(w, state)
}

// HandleGetActiveRooms handles GET /api/rooms/active
func (h *StateHandler) HandleGetActiveRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.stateProvider.ActiveRooms())
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rooms/active", h.HandleGetActiveRooms)
	mux.HandleFunc("GET /api/rooms/{id}/state", h.HandleGetRoomState)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
