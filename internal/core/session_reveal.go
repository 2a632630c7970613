package core

import (
	"time"

	"github.com/dkeye/Poker/internal/domain"
	"github.com/rs/zerolog/log"
)

// RevealVotes starts the timed hidden -> revealing -> shown transition.
// The request is privileged but deliberately not gated on completion;
// the moderator panel decides when a reveal is useful. Votes become
// visible only when the delay elapses, never here.
func (s *RoomSession) RevealVotes(cid domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.isPrivilegedLocked(cid) {
		return
	}
	if s.room.IsRevealing {
		return
	}

	s.room.IsRevealing = true
	s.fanoutLocked("", EventRevealStarted, RoomPayload{Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Dur("delay", s.timing.RevealDelay).Msg("reveal started")

	time.AfterFunc(s.timing.RevealDelay, s.completeReveal)
}

// completeReveal fires after the countdown. The room may have been reset
// or ended mid-delay, so the transition is re-validated before anything
// mutates; cancellation is the guard, not a timer abort.
func (s *RoomSession) completeReveal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.room.IsRevealing {
		return
	}

	s.room.ShowVotes = true
	s.room.IsRevealing = false
	s.fanoutLocked("", EventVotesRevealed, RoomPayload{Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Msg("votes revealed")

	time.AfterFunc(s.timing.RevealModalDelay, s.closeRevealModal)
}

// closeRevealModal is purely advisory for clients still showing the
// reveal overlay; it changes no room state.
func (s *RoomSession) closeRevealModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.room.ShowVotes {
		return
	}
	s.fanoutLocked("", EventRevealModalClosed, RoomPayload{Room: s.room})
}
