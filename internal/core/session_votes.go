package core

import (
	"github.com/dkeye/Poker/internal/domain"
	"github.com/rs/zerolog/log"
)

// CastVote upserts the caller's vote. Ineligible or unknown voters and
// values outside the current deck are dropped without surfacing an error
// to anyone; the updated room is broadcast on success.
func (s *RoomSession) CastVote(cid domain.ClientID, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	user := s.findUserByIDLocked(cid)
	if user == nil || !user.CanVote {
		log.Debug().Str("module", "core.session").Str("room", string(s.room.ID)).Str("cid", string(cid)).Msg("ineligible vote dropped")
		return
	}
	if !s.isVotingValueLocked(value) {
		log.Debug().Str("module", "core.session").Str("room", string(s.room.ID)).Str("value", value).Msg("unknown vote value dropped")
		return
	}

	s.room.Votes[cid] = domain.NewVote(cid, &value)
	s.recomputeVotingCompleteLocked()
	s.fanoutLocked("", EventVoteUpdated, RoomPayload{Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", user.Name).Bool("complete", s.room.IsVotingComplete).Msg("vote cast")
}

// ToggleModeratorVoting flips the caller's own eligibility. Privileged
// only; opting out deletes any standing vote so completion stays honest.
func (s *RoomSession) ToggleModeratorVoting(cid domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.isPrivilegedLocked(cid) {
		return
	}

	user := s.findUserByIDLocked(cid)
	if user == nil {
		return
	}
	user.CanVote = !user.CanVote
	if !user.CanVote {
		delete(s.room.Votes, cid)
	}
	s.recomputeVotingCompleteLocked()
	s.fanoutLocked("", EventModeratorVotingToggled, RoomPayload{Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", user.Name).Bool("canVote", user.CanVote).Msg("moderator voting toggled")
}

// UpdateVotingValues replaces the deck. Replacing it invalidates every
// standing vote, so the round resets entirely.
func (s *RoomSession) UpdateVotingValues(cid domain.ClientID, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.isPrivilegedLocked(cid) || len(values) == 0 {
		return
	}

	s.room.VotingValues = values
	s.clearRoundLocked()
	s.fanoutLocked("", EventVotingValuesUpdated, RoomPayload{Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Strs("values", values).Msg("voting values updated")
}

// ResetVoting clears the round: votes gone, reveal state back to hidden.
func (s *RoomSession) ResetVoting(cid domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.isPrivilegedLocked(cid) {
		return
	}

	s.clearRoundLocked()
	s.fanoutLocked("", EventVotingReset, RoomPayload{Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Msg("voting reset")
}

func (s *RoomSession) clearRoundLocked() {
	s.room.Votes = make(map[domain.ClientID]*domain.Vote)
	s.room.IsVotingComplete = false
	s.room.ShowVotes = false
	s.room.IsRevealing = false
}

func (s *RoomSession) isVotingValueLocked(value string) bool {
	for _, v := range s.room.VotingValues {
		if v == value {
			return true
		}
	}
	return false
}
