package core

import (
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Poker/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomSession is the serialized state machine of one room. Every
// operation, including scheduled timer callbacks, takes the session
// mutex, so no observer ever sees a partially-applied mutation and
// broadcasts reach the send queues in the order events were processed.
// It owns the room state and the bound connections, but never closes
// adapter-owned transports except when kicking a slow consumer.
type RoomSession struct {
	mu      sync.Mutex
	room    *domain.Room
	conns   map[domain.ClientID]SignalConnection
	timing  Timing
	closed  bool
	dropped []domain.ClientID
}

func NewRoomSession(room *domain.Room, timing Timing) *RoomSession {
	return &RoomSession{
		room:   room,
		conns:  make(map[domain.ClientID]SignalConnection),
		timing: timing,
	}
}

func (s *RoomSession) ID() domain.RoomID { return s.room.ID }

func (s *RoomSession) Info() RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RoomInfo{
		ID:             s.room.ID,
		Name:           s.room.Name,
		UserCount:      len(s.room.Users),
		ConnectedCount: s.connectedCountLocked(),
		CreatedAt:      s.room.CreatedAt,
	}
}

func (s *RoomSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// CloseIfEmpty closes the session only when no user is connected. The
// check and the transition share one lock hold, so a join processed
// between an eviction timer firing and the close keeps the room alive.
func (s *RoomSession) CloseIfEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.connectedCountLocked() > 0 {
		return false
	}
	s.closed = true
	s.conns = make(map[domain.ClientID]SignalConnection)
	return true
}

// CollectDropped returns and clears the handles whose sends failed since
// the last call. The orchestrator feeds them to the backpressure policy.
func (s *RoomSession) CollectDropped() []domain.ClientID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.dropped
	s.dropped = nil
	return out
}

// AddCreator seats the room's first user. The creator is always a voting
// moderator and holds creatorId for the life of the room.
func (s *RoomSession) AddCreator(cid domain.ClientID, conn SignalConnection, userName string) error {
	user, err := domain.NewUser(cid, userName, domain.RoleModerator)
	if err != nil {
		return err
	}
	user.CanVote = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.room.Users = append(s.room.Users, user)
	s.room.Moderators = append(s.room.Moderators, cid)
	s.room.CreatorID = cid
	s.conns[cid] = conn
	s.unicastLocked(conn, EventRoomCreated, RoomCreatedData{RoomID: s.room.ID, Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", userName).Msg("room created")
	return nil
}

type JoinOutcome int

const (
	JoinRoomGone JoinOutcome = iota
	JoinedNew
	JoinNameTaken
	JoinReclaimed
	JoinRejected
)

// Join seats a new user, or reclaims a grace-period seat when the name
// matches a disconnected user. A name held by a connected user is taken.
// An invalid name is rejected, which is not the same as the room being
// gone; the room keeps existing and the client keeps its state.
func (s *RoomSession) Join(cid domain.ClientID, conn SignalConnection, userName, role string) JoinOutcome {
	if err := domain.ValidateUsername(userName); err != nil {
		log.Warn().Err(err).Str("module", "core.session").Msg("join rejected")
		return JoinRejected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return JoinRoomGone
	}

	if existing := s.findUserByNameLocked(userName); existing != nil {
		if !existing.Disconnected {
			s.unicastLocked(conn, EventUsernameTaken, UsernameTakenData{Message: "This name is already in use in the room"})
			return JoinNameTaken
		}
		// Seat held for reconnection; adopt it under the new handle.
		s.reattachLocked(existing, cid)
		s.recomputeVotingCompleteLocked()
		s.conns[cid] = conn
		s.unicastLocked(conn, EventRoomJoined, RoomPayload{Room: s.room})
		s.fanoutLocked(cid, EventUserJoined, UserRoomPayload{User: existing, Room: s.room})
		log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", userName).Msg("grace seat reclaimed on join")
		return JoinReclaimed
	}

	user, _ := domain.NewUser(cid, userName, domain.ParseRole(role))
	s.room.Users = append(s.room.Users, user)
	s.recomputeVotingCompleteLocked()
	s.conns[cid] = conn
	s.unicastLocked(conn, EventRoomJoined, RoomPayload{Room: s.room})
	s.fanoutLocked(cid, EventUserJoined, UserRoomPayload{User: user, Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", userName).Str("role", string(user.Role)).Msg("user joined")
	return JoinedNew
}

type DisconnectInfo struct {
	Found     bool
	IsCreator bool
	Empty     bool
}

// MarkDisconnected flags the user behind a dropped handle as awaiting
// reconnection. Votes are deleted immediately so absent voters neither
// block nor falsely satisfy completion; the seat itself survives until
// the grace window runs out (forever, for the creator).
func (s *RoomSession) MarkDisconnected(cid domain.ClientID) DisconnectInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, cid)
	if s.closed {
		return DisconnectInfo{}
	}

	user := s.findUserByIDLocked(cid)
	if user == nil || user.Disconnected {
		return DisconnectInfo{}
	}

	now := time.Now()
	user.Disconnected = true
	user.DisconnectedAt = &now
	user.LastClientID = cid
	delete(s.room.Votes, cid)
	s.recomputeVotingCompleteLocked()
	s.fanoutLocked(cid, EventUserDisconnected, UserGonePayload{UserID: cid, Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", user.Name).Msg("user disconnected")

	return DisconnectInfo{
		Found:     true,
		IsCreator: cid == s.room.CreatorID,
		Empty:     s.connectedCountLocked() == 0,
	}
}

// RemoveIfStillGone evicts a seat whose grace window expired. It is a
// no-op when the user reconnected in the meantime (the handle is then no
// longer current) or when the seat belongs to the creator.
func (s *RoomSession) RemoveIfStillGone(cid domain.ClientID) (removed, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || cid == s.room.CreatorID {
		return false, false
	}

	user := s.findUserByIDLocked(cid)
	if user == nil || !user.Disconnected {
		return false, false
	}

	for i, u := range s.room.Users {
		if u == user {
			s.room.Users = append(s.room.Users[:i], s.room.Users[i+1:]...)
			break
		}
	}
	s.removeModeratorLocked(cid)
	delete(s.room.Votes, cid)
	s.recomputeVotingCompleteLocked()
	s.fanoutLocked("", EventUserLeft, UserGonePayload{UserID: cid, Room: s.room})
	log.Info().Str("module", "core.session").Str("room", string(s.room.ID)).Str("user", user.Name).Msg("user removed after grace period")
	return true, s.connectedCountLocked() == 0
}

func (s *RoomSession) ConnectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectedCountLocked()
}

// reattachLocked moves a known user onto a new handle: id reassignment,
// creator and moderator recovery through the previous handles, and vote
// re-keying. The caller recomputes completion afterwards.
func (s *RoomSession) reattachLocked(user *domain.User, cid domain.ClientID) {
	old := user.ID
	prev := user.LastClientID
	user.ID = cid
	user.Disconnected = false
	user.DisconnectedAt = nil
	user.LastClientID = ""

	// A still-bound old connection is a zombie once the seat moves.
	if old != cid {
		delete(s.conns, old)
	}

	if old == s.room.CreatorID || (prev != "" && prev == s.room.CreatorID) {
		s.room.CreatorID = cid
		user.Role = domain.RoleModerator
	}
	if s.hasModeratorLocked(old) || s.hasModeratorLocked(prev) {
		s.removeModeratorLocked(old)
		s.removeModeratorLocked(prev)
		s.addModeratorLocked(cid)
		user.Role = domain.RoleModerator
	}
	s.rekeyVoteLocked(old, prev, cid)
}

// rekeyVoteLocked trusts the server ledger over anything else: first the
// vote keyed by the handle just replaced, then one keyed by the handle
// held before an earlier drop, then any stray entry still owned by
// either handle.
func (s *RoomSession) rekeyVoteLocked(old, prev, cid domain.ClientID) {
	if v, ok := s.room.Votes[old]; ok {
		delete(s.room.Votes, old)
		v.UserID = cid
		s.room.Votes[cid] = v
		return
	}
	if prev != "" {
		if v, ok := s.room.Votes[prev]; ok {
			delete(s.room.Votes, prev)
			v.UserID = cid
			s.room.Votes[cid] = v
			return
		}
	}
	for k, v := range s.room.Votes {
		if v.UserID == old || (prev != "" && v.UserID == prev) {
			delete(s.room.Votes, k)
			v.UserID = cid
			s.room.Votes[cid] = v
			return
		}
	}
}

func (s *RoomSession) connectedCountLocked() int {
	n := 0
	for _, u := range s.room.Users {
		if !u.Disconnected {
			n++
		}
	}
	return n
}

func (s *RoomSession) findUserByNameLocked(name string) *domain.User {
	for _, u := range s.room.Users {
		if strings.EqualFold(u.Name, name) {
			return u
		}
	}
	return nil
}

func (s *RoomSession) findUserByIDLocked(cid domain.ClientID) *domain.User {
	for _, u := range s.room.Users {
		if u.ID == cid {
			return u
		}
	}
	return nil
}

// isPrivilegedLocked gates every mutating operation except vote, join
// and rejoin: the creator and the moderators set.
func (s *RoomSession) isPrivilegedLocked(cid domain.ClientID) bool {
	return cid == s.room.CreatorID || s.hasModeratorLocked(cid)
}

func (s *RoomSession) hasModeratorLocked(cid domain.ClientID) bool {
	if cid == "" {
		return false
	}
	for _, m := range s.room.Moderators {
		if m == cid {
			return true
		}
	}
	return false
}

func (s *RoomSession) addModeratorLocked(cid domain.ClientID) {
	if !s.hasModeratorLocked(cid) {
		s.room.Moderators = append(s.room.Moderators, cid)
	}
}

func (s *RoomSession) removeModeratorLocked(cid domain.ClientID) {
	if cid == "" {
		return
	}
	out := s.room.Moderators[:0]
	for _, m := range s.room.Moderators {
		if m != cid {
			out = append(out, m)
		}
	}
	s.room.Moderators = out
}

// recomputeVotingCompleteLocked must run after every mutation of users
// or votes; completion is never left stale and never implies reveal.
func (s *RoomSession) recomputeVotingCompleteLocked() {
	voters := 0
	for _, u := range s.room.Users {
		if u.CanVote {
			voters++
		}
	}
	s.room.IsVotingComplete = len(s.room.Votes) == voters
}

func (s *RoomSession) unicastLocked(conn SignalConnection, event string, data any) {
	frame, err := EncodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("event", event).Msg("encode failed")
		return
	}
	_ = conn.TrySend(frame)
}

// fanoutLocked broadcasts to every bound connection except the given
// one (empty means everyone). Enqueueing under the session lock is what
// preserves per-room delivery order. Failed sends unbind the connection
// and are reported through CollectDropped.
func (s *RoomSession) fanoutLocked(except domain.ClientID, event string, data any) {
	frame, err := EncodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "core.session").Str("event", event).Msg("encode failed")
		return
	}
	for cid, conn := range s.conns {
		if cid == except {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			delete(s.conns, cid)
			s.dropped = append(s.dropped, cid)
			log.Warn().Str("module", "core.session").Str("room", string(s.room.ID)).Str("cid", string(cid)).Msg("send failed, connection unbound")
		}
	}
}
