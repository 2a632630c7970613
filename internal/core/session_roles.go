package core

import (
	"github.com/dkeye/Poker/internal/domain"
	"github.com/rs/zerolog/log"
)

// Promote grants moderator privilege. Creator only; promoting an
// existing moderator is a no-op. New moderators vote by default.
func (s *RoomSession) Promote(cid, target domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || cid != s.room.CreatorID {
		return
	}

	user := s.findUserByIDLocked(target)
	if user == nil || user.Role == domain.RoleModerator {
		return
	}

	user.Role = domain.RoleModerator
	user.CanVote = true
	s.addModeratorLocked(target)
	s.recomputeVotingCompleteLocked()
	s.fanoutLocked("", EventUserPromoted, UserPromotedData{Room: s.room, PromotedUserID: target})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", user.Name).Msg("user promoted")
}

// Demote strips moderator privilege back to participant. Creator only;
// the creator themselves can never be demoted.
func (s *RoomSession) Demote(cid, target domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || cid != s.room.CreatorID || target == s.room.CreatorID {
		return
	}

	user := s.findUserByIDLocked(target)
	if user == nil || !s.hasModeratorLocked(target) {
		return
	}

	user.Role = domain.RoleParticipant
	user.CanVote = true
	s.removeModeratorLocked(target)
	s.recomputeVotingCompleteLocked()
	s.fanoutLocked("", EventUserDemoted, UserDemotedData{Room: s.room, DemotedUserID: target})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", user.Name).Msg("user demoted")
}

// End tears the room down. Creator only. Everyone gets room-ended; the
// caller is responsible for deleting the session from the store and
// clearing registry associations for the returned handles.
func (s *RoomSession) End(cid domain.ClientID) (ended bool, members []domain.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || cid != s.room.CreatorID {
		return false, nil
	}

	s.fanoutLocked("", EventRoomEnded, RoomEndedData{
		RoomID:   s.room.ID,
		RoomName: s.room.Name,
		Message:  "The room has been ended by the creator",
	})
	s.closed = true
	members = make([]domain.ClientID, 0, len(s.conns))
	for c := range s.conns {
		members = append(members, c)
	}
	s.conns = make(map[domain.ClientID]SignalConnection)
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Msg("room ended by creator")
	return true, members
}
