package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// Lifecycle owns the time-based eviction of abandoned seats and empty
// rooms. Timers are never cancelled; every callback re-validates the
// state it is about to mutate, so a reconnect or a new join in the
// meantime turns the callback into a no-op.
type Lifecycle struct {
	Store          *RoomStore
	ReconnectGrace time.Duration
	EmptyRoomTTL   time.Duration
}

func NewLifecycle(store *RoomStore, grace, emptyTTL time.Duration) *Lifecycle {
	return &Lifecycle{Store: store, ReconnectGrace: grace, EmptyRoomTTL: emptyTTL}
}

// ScheduleSeatRemoval removes a disconnected non-creator seat once the
// grace window passes, unless the user reconnected first (the handle is
// then no longer current and the removal is a no-op).
func (lc *Lifecycle) ScheduleSeatRemoval(sess *core.RoomSession, cid domain.ClientID) {
	time.AfterFunc(lc.ReconnectGrace, func() {
		removed, empty := sess.RemoveIfStillGone(cid)
		if !removed {
			return
		}
		log.Info().Str("module", "app.lifecycle").Str("room", string(sess.ID())).Str("cid", string(cid)).Msg("seat removed after grace period")
		if empty {
			lc.ScheduleEviction(sess)
		}
	})
}

// ScheduleEviction deletes a room that still has zero connected users
// when the TTL runs out. One window for every room, creator present or
// not: the longer, creator-preserving policy.
func (lc *Lifecycle) ScheduleEviction(sess *core.RoomSession) {
	time.AfterFunc(lc.EmptyRoomTTL, func() {
		if !sess.CloseIfEmpty() {
			return
		}
		lc.Store.Delete(sess.ID())
		log.Info().Str("module", "app.lifecycle").Str("room", string(sess.ID())).Msg("empty room evicted")
	})
}
