package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// RoomStore is the single authority on room existence. Rooms are
// volatile: the store lives for the process and nothing is persisted.
type RoomStore struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*core.RoomSession
	timing core.Timing
}

func NewRoomStore(timing core.Timing) *RoomStore {
	return &RoomStore{
		rooms:  make(map[domain.RoomID]*core.RoomSession),
		timing: timing,
	}
}

// Create mints a room under a fresh id. Ids are uuids, so collisions
// are not handled.
func (st *RoomStore) Create(name string) *core.RoomSession {
	id := domain.RoomID(uuid.NewString())
	sess := core.NewRoomSession(domain.NewRoom(id, name, time.Now()), st.timing)

	st.mu.Lock()
	st.rooms[id] = sess
	st.mu.Unlock()
	log.Info().Str("module", "app.store").Str("room", string(id)).Str("name", name).Msg("room stored")
	return sess
}

func (st *RoomStore) Get(id domain.RoomID) (*core.RoomSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.rooms[id]
	return sess, ok
}

func (st *RoomStore) Delete(id domain.RoomID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.rooms[id]; ok {
		delete(st.rooms, id)
		log.Info().Str("module", "app.store").Str("room", string(id)).Msg("room deleted")
	}
}

func (st *RoomStore) List() []core.RoomInfo {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(st.rooms))
	for _, sess := range st.rooms {
		out = append(out, sess.Info())
	}
	return out
}

func (st *RoomStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.rooms)
}
