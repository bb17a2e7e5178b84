package timers

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

type key struct {
	roomID   string
	playerID string
}

type entry struct {
	timer clockwork.Timer
	stop  chan struct{}
}

// Registry owns at most one pending turn timer per (room, player) pair.
type Registry struct {
	clock Clock

	mu     sync.Mutex
	timers map[key]*entry
}

// NewRegistry creates an empty registry driven by clock.
func NewRegistry(clock Clock) *Registry {
	return &Registry{
		clock:  clock,
		timers: make(map[key]*entry),
	}
}

// Schedule arms a one-shot timer for the pair, replacing any timer already
// pending for it. onFire runs on its own goroutine after d unless the entry
// is cancelled or replaced first. The entry is removed before onFire runs.
func (r *Registry) Schedule(roomID, playerID string, d time.Duration, onFire func()) {
	k := key{roomID: roomID, playerID: playerID}
	e := &entry{
		timer: r.clock.NewTimer(d),
		stop:  make(chan struct{}),
	}

	r.replaceTimer(k, e)

	go func() {
		select {
		case <-e.timer.Chan():
			// A cancel may have won the race after the timer fired.
			if !r.removeIfCurrent(k, e) {
				return
			}
			log.Debug().
				Str("room_id", roomID).
				Str("player_id", playerID).
				Msg("turn timer fired")
			onFire()
		case <-e.stop:
		}
	}()

	log.Debug().
		Str("room_id", roomID).
		Str("player_id", playerID).
		Dur("duration", d).
		Msg("scheduled turn timer")
}

// Cancel stops and removes the timer for the pair. Cancelling an absent
// timer is a no-op.
func (r *Registry) Cancel(roomID, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{roomID: roomID, playerID: playerID}
	if e, exists := r.timers[k]; exists {
		delete(r.timers, k)
		e.cancel()
		log.Debug().
			Str("room_id", roomID).
			Str("player_id", playerID).
			Msg("cancelled turn timer")
	}
}

// CancelRoom cancels every timer belonging to a room.
func (r *Registry) CancelRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, e := range r.timers {
		if k.roomID == roomID {
			delete(r.timers, k)
			e.cancel()
		}
	}
}

// Has reports whether a timer is pending for the pair.
func (r *Registry) Has(roomID, playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.timers[key{roomID: roomID, playerID: playerID}]
	return exists
}

// Len returns the number of pending timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Stop cancels every pending timer.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, e := range r.timers {
		e.cancel()
		log.Debug().
			Str("room_id", k.roomID).
			Str("player_id", k.playerID).
			Msg("cancelled timer on shutdown")
	}
	r.timers = make(map[key]*entry)
}

// replaceTimer stores e for k, cancelling whatever was there before.
func (r *Registry) replaceTimer(k key, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.timers[k]; exists {
		existing.cancel()
		log.Debug().
			Str("room_id", k.roomID).
			Str("player_id", k.playerID).
			Msg("replaced existing turn timer")
	}
	r.timers[k] = e
}

// removeIfCurrent deletes k only while it still maps to e.
func (r *Registry) removeIfCurrent(k key, e *entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timers[k] != e {
		return false
	}
	delete(r.timers, k)
	return true
}

func (e *entry) cancel() {
	stopAndDrainTimer(e.timer)
	close(e.stop)
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
