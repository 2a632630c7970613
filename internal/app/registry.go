package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

type connEntry struct {
	RoomID domain.RoomID
	Conn   core.SignalConnection
}

// Registry tracks live connection handles and which room each is bound
// to, so a transport-level disconnect routes straight to the right room
// instead of sweeping every room in the store.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ClientID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ClientID]*connEntry)}
}

func (r *Registry) Bind(cid domain.ClientID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[cid] = &connEntry{Conn: conn}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("bound connection")
}

func (r *Registry) Unbind(cid domain.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, cid)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("unbound connection")
}

func (r *Registry) Conn(cid domain.ClientID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// UpdateRoom records which room the handle currently belongs to.
func (r *Registry) UpdateRoom(cid domain.ClientID, roomID domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return false
	}
	e.RoomID = roomID
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Str("room", string(roomID)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(cid domain.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[cid]; ok {
		e.RoomID = ""
	}
}

func (r *Registry) RoomOf(cid domain.ClientID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[cid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}
