package rooms

import (
	"errors"
	"sort"
	"sync"

	"github.com/mcdev12/letterturn/go/internal/models"
)

// ErrRoomExists is returned by Create when the room id is already live.
var ErrRoomExists = errors.New("room already exists")

// Store is the in-memory registry of live rooms keyed by room code.
// It guards only its own map; room contents are protected by the room lock.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rooms: make(map[string]*models.Room)}
}

// Create adds a room. It fails if the id is taken.
func (s *Store) Create(room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.ID]; exists {
		return ErrRoomExists
	}
	s.rooms[room.ID] = room
	return nil
}

// Get looks up a room by id.
func (s *Store) Get(id string) (*models.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// Delete removes a room. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// ForEach calls fn for every room live at the time of the call. The store
// lock is not held while fn runs, so fn may lock rooms and delete them.
func (s *Store) ForEach(fn func(room *models.Room)) {
	for _, room := range s.List() {
		fn(room)
	}
}

// List returns the live rooms ordered by id.
func (s *Store) List() []*models.Room {
	s.mu.RLock()
	list := make([]*models.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		list = append(list, room)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
