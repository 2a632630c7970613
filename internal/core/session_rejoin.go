package core

import (
	"github.com/dkeye/Poker/internal/domain"
	"github.com/rs/zerolog/log"
)

// RejoinHints is the client-held cache of the actor's last confirmed
// state. It exists to survive the window where the server may already
// have evicted or mutated the record; the server's own ledger always
// wins when both are available.
type RejoinHints struct {
	ShowVotes        *bool
	IsVotingComplete *bool
	VoteValue        *string
	IsModerator      *bool
	IsCreator        *bool
	Role             *string
	CanVote          *bool
}

func (h RejoinHints) claimsCreator() bool {
	return h.IsCreator != nil && *h.IsCreator
}

func (h RejoinHints) claimsModerator() bool {
	return h.IsModerator != nil && *h.IsModerator
}

// claimsRevealed is the canonical restoration rule: showVotes comes back
// only when the round was manually revealed before the disconnect, i.e.
// both hints are true. Vote completion alone never re-reveals; the round
// simply continues with completion bookkeeping intact.
func (h RejoinHints) claimsRevealed() bool {
	return h.ShowVotes != nil && *h.ShowVotes &&
		h.IsVotingComplete != nil && *h.IsVotingComplete
}

type RejoinOutcome int

const (
	RejoinRoomGone RejoinOutcome = iota
	RejoinReconnected
	RejoinJoinedNew
	RejoinRejected
)

// Rejoin reconciles a returning actor with whatever the room still
// knows about them, matching by case-insensitive name. Repeated calls
// with identical payloads are idempotent: no duplicate seats, moderator
// entries, or votes.
func (s *RoomSession) Rejoin(cid domain.ClientID, conn SignalConnection, userName string, hints RejoinHints) RejoinOutcome {
	if err := domain.ValidateUsername(userName); err != nil {
		log.Warn().Err(err).Str("module", "core.session").Msg("rejoin rejected")
		return RejoinRejected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return RejoinRoomGone
	}

	if user := s.findUserByNameLocked(userName); user != nil {
		s.rejoinExistingLocked(user, cid, conn, hints)
		return RejoinReconnected
	}
	s.rejoinAsNewLocked(cid, conn, userName, hints)
	return RejoinJoinedNew
}

func (s *RoomSession) rejoinExistingLocked(user *domain.User, cid domain.ClientID, conn SignalConnection, hints RejoinHints) {
	old := user.ID
	prev := user.LastClientID

	s.reattachLocked(user, cid)

	// The ledger may no longer carry any trace of the old handles (a
	// grace-expiry already scrubbed them); the hints are the last-resort
	// recovery path for creator, moderator, and vote state.
	if hints.claimsCreator() && s.room.CreatorID != cid {
		s.room.CreatorID = cid
		user.Role = domain.RoleModerator
	}
	if hints.claimsModerator() && !s.hasModeratorLocked(cid) {
		s.addModeratorLocked(cid)
		user.Role = domain.RoleModerator
	}
	if _, ok := s.room.Votes[cid]; !ok && hints.VoteValue != nil && user.CanVote {
		s.room.Votes[cid] = domain.NewVote(cid, hints.VoteValue)
	}

	s.recomputeVotingCompleteLocked()
	if hints.claimsRevealed() {
		s.room.ShowVotes = true
		s.room.IsVotingComplete = true
	}

	s.conns[cid] = conn
	isCreator := s.room.CreatorID == cid
	s.unicastLocked(conn, EventRoomRejoined, RoomRejoinedData{Room: s.room, IsReconnection: true, IsCreator: isCreator})
	s.fanoutLocked(cid, EventUserRejoined, UserRoomPayload{User: user, Room: s.room})
	log.Info().
		Str("module", "core.session").
		Str("room", string(s.room.ID)).
		Str("user", user.Name).
		Str("old", string(old)).
		Str("prev", string(prev)).
		Bool("creator", isCreator).
		Msg("user rejoined")
}

// rejoinAsNewLocked seats an actor the room has no memory of (full
// session loss on the server side). The hints rebuild role, eligibility
// and vote; the reveal restoration rule is the same as for a match.
func (s *RoomSession) rejoinAsNewLocked(cid domain.ClientID, conn SignalConnection, userName string, hints RejoinHints) {
	role := domain.RoleParticipant
	if hints.Role != nil && *hints.Role != "" {
		role = domain.Role(*hints.Role)
	}
	user, _ := domain.NewUser(cid, userName, role)
	user.CanVote = role != domain.RoleSpectator
	if hints.CanVote != nil {
		user.CanVote = *hints.CanVote
	}
	s.room.Users = append(s.room.Users, user)

	if role == domain.RoleModerator || hints.claimsModerator() {
		user.Role = domain.RoleModerator
		s.addModeratorLocked(cid)
	}
	if hints.VoteValue != nil && user.CanVote {
		s.room.Votes[cid] = domain.NewVote(cid, hints.VoteValue)
	}

	s.recomputeVotingCompleteLocked()
	if hints.claimsRevealed() {
		s.room.ShowVotes = true
		s.room.IsVotingComplete = true
	}

	s.conns[cid] = conn
	s.unicastLocked(conn, EventRoomRejoined, RoomRejoinedData{Room: s.room, IsReconnection: false, IsCreator: false})
	s.fanoutLocked(cid, EventUserJoined, UserRoomPayload{User: user, Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", userName).Str("role", string(user.Role)).Msg("rejoin seated new user")
}
