package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

// Orchestrator routes named client events to room sessions. It owns no
// room state itself; it looks sessions up in the store, applies the
// silent-drop error policy for missing rooms and unauthorized calls,
// and feeds backpressure fallout to the kick policy.
type Orchestrator struct {
	Store     *RoomStore
	Registry  *Registry
	Lifecycle *Lifecycle
	Policy    Policy
}

func (o *Orchestrator) CreateRoom(cid domain.ClientID, conn core.SignalConnection, data core.CreateRoomData) {
	if err := domain.ValidateRoomName(data.RoomName); err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("cid", string(cid)).Msg("create-room dropped")
		return
	}
	if err := domain.ValidateUsername(data.UserName); err != nil {
		log.Warn().Err(err).Str("module", "app.orch").Str("cid", string(cid)).Msg("create-room dropped")
		return
	}

	sess := o.Store.Create(data.RoomName)
	if err := sess.AddCreator(cid, conn, data.UserName); err != nil {
		o.Store.Delete(sess.ID())
		log.Error().Err(err).Str("module", "app.orch").Msg("create-room failed")
		return
	}
	o.Registry.UpdateRoom(cid, sess.ID())
}

func (o *Orchestrator) JoinRoom(cid domain.ClientID, conn core.SignalConnection, data core.JoinRoomData) {
	sess, ok := o.Store.Get(domain.RoomID(data.RoomID))
	if !ok {
		o.sendTo(conn, core.EventRoomNotFound, nil)
		return
	}

	switch sess.Join(cid, conn, data.UserName, data.Role) {
	case core.JoinedNew, core.JoinReclaimed:
		o.Registry.UpdateRoom(cid, sess.ID())
	case core.JoinRoomGone:
		o.sendTo(conn, core.EventRoomNotFound, nil)
	case core.JoinNameTaken:
		// username-taken already unicast by the session
	case core.JoinRejected:
		// invalid name, silently dropped; the room still exists
	}
	o.applyPolicy(sess)
}

func (o *Orchestrator) RejoinRoom(cid domain.ClientID, conn core.SignalConnection, data core.RejoinRoomData) {
	sess, ok := o.Store.Get(domain.RoomID(data.RoomID))
	if !ok {
		o.sendTo(conn, core.EventRoomNotFound, nil)
		return
	}

	switch sess.Rejoin(cid, conn, data.UserName, data.Hints()) {
	case core.RejoinReconnected, core.RejoinJoinedNew:
		o.Registry.UpdateRoom(cid, sess.ID())
	case core.RejoinRoomGone:
		o.sendTo(conn, core.EventRoomNotFound, nil)
	case core.RejoinRejected:
		// invalid name, silently dropped; the room still exists
	}
	o.applyPolicy(sess)
}

func (o *Orchestrator) Vote(cid domain.ClientID, data core.VoteData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventVote); ok {
		sess.CastVote(cid, data.Value)
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) ToggleModeratorVoting(cid domain.ClientID, data core.RoomOnlyData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventToggleModeratorVoting); ok {
		sess.ToggleModeratorVoting(cid)
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) UpdateVotingValues(cid domain.ClientID, data core.UpdateVotingValuesData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventUpdateVotingValues); ok {
		sess.UpdateVotingValues(cid, data.Values)
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) RevealVotes(cid domain.ClientID, data core.RoomOnlyData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventRevealVotes); ok {
		sess.RevealVotes(cid)
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) ResetVoting(cid domain.ClientID, data core.RoomOnlyData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventResetVoting); ok {
		sess.ResetVoting(cid)
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) PromoteToModerator(cid domain.ClientID, data core.TargetUserData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventPromoteToModerator); ok {
		sess.Promote(cid, domain.ClientID(data.UserID))
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) DemoteFromModerator(cid domain.ClientID, data core.TargetUserData) {
	if sess, ok := o.lookup(cid, data.RoomID, core.EventDemoteFromModerator); ok {
		sess.Demote(cid, domain.ClientID(data.UserID))
		o.applyPolicy(sess)
	}
}

func (o *Orchestrator) EndRoom(cid domain.ClientID, data core.RoomOnlyData) {
	sess, ok := o.lookup(cid, data.RoomID, core.EventEndRoom)
	if !ok {
		return
	}
	ended, members := sess.End(cid)
	if !ended {
		return
	}
	o.Store.Delete(sess.ID())
	for _, m := range members {
		o.Registry.RemoveRoom(m)
	}
}

// OnDisconnect handles a transport-level drop for a handle. Creators
// keep their seat indefinitely; everyone else gets a grace window.
func (o *Orchestrator) OnDisconnect(cid domain.ClientID) {
	roomID, ok := o.Registry.RoomOf(cid)
	if !ok {
		return
	}
	sess, ok := o.Store.Get(roomID)
	if !ok {
		return
	}

	info := sess.MarkDisconnected(cid)
	if info.Found && !info.IsCreator {
		o.Lifecycle.ScheduleSeatRemoval(sess, cid)
	}
	if info.Empty {
		o.Lifecycle.ScheduleEviction(sess)
	}
	o.applyPolicy(sess)
}

func (o *Orchestrator) lookup(cid domain.ClientID, roomID, event string) (*core.RoomSession, bool) {
	sess, ok := o.Store.Get(domain.RoomID(roomID))
	if !ok {
		// Silent drop by contract; the log line is the only diagnostic.
		log.Warn().Str("module", "app.orch").Str("event", event).Str("room", roomID).Str("cid", string(cid)).Msg("room not found, dropped")
		return nil, false
	}
	return sess, true
}

func (o *Orchestrator) sendTo(conn core.SignalConnection, event string, data any) {
	frame, err := core.EncodeEvent(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.orch").Str("event", event).Msg("encode failed")
		return
	}
	_ = conn.TrySend(frame)
}

// applyPolicy closes the transports of members whose send queues
// overflowed during a broadcast; the close surfaces as a normal
// disconnect and the seat enters the usual grace window.
func (o *Orchestrator) applyPolicy(sess *core.RoomSession) {
	for _, cid := range sess.CollectDropped() {
		if o.Policy == nil || o.Policy.OnBackpressure(cid) != KickMember {
			continue
		}
		if conn, ok := o.Registry.Conn(cid); ok {
			conn.Close()
		}
		log.Warn().Str("module", "app.orch").Str("cid", string(cid)).Msg("kicked slow consumer")
	}
}
