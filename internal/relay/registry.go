package relay

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/domain"
)

// Peer is one registered member of a room, as seen by the router.
type Peer struct {
	ID   domain.Identity
	Sink Sink
}

// Registry is the process-wide room membership map. It is the only state
// shared between sessions; every operation takes the lock so concurrent
// register/deregister and snapshot reads never interleave into a torn view.
// It is passed to every session at construction, never a package singleton,
// so a distributed backing can replace it without touching the sessions.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.Identity]Sink
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]map[domain.Identity]Sink)}
}

// Register inserts the connection under (room, id) if the slot is free and
// reports whether it did. An occupied slot is left untouched: a duplicate
// join must never evict a live connection.
func (r *Registry) Register(room domain.RoomID, id domain.Identity, sink Sink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[domain.Identity]Sink)
		r.rooms[room] = members
	}
	if _, occupied := members[id]; occupied {
		return false
	}
	members[id] = sink
	log.Info().Str("module", "relay.registry").Str("room", string(room)).Str("identity", string(id)).Msg("member registered")
	return true
}

// Deregister removes (room, id) and prunes the room once empty so dead rooms
// do not accumulate over the life of the process.
func (r *Registry) Deregister(room domain.RoomID, id domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	log.Info().Str("module", "relay.registry").Str("room", string(room)).Str("identity", string(id)).Msg("member deregistered")
}

// Lookup resolves a unicast target.
func (r *Registry) Lookup(room domain.RoomID, id domain.Identity) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.rooms[room][id]
	return sink, ok
}

// ListOthers returns every identity in the room except the excluded one.
func (r *Registry) ListOthers(room domain.RoomID, excluding domain.Identity) []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Identity, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		if id == excluding {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Peers snapshots the delivery set for a broadcast from the excluded sender.
func (r *Registry) Peers(room domain.RoomID, excluding domain.Identity) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.rooms[room]))
	for id, sink := range r.rooms[room] {
		if id == excluding {
			continue
		}
		out = append(out, Peer{ID: id, Sink: sink})
	}
	return out
}
