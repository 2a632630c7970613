package core

import (
	"testing"

	"github.com/dkeye/Poker/internal/domain"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestRejoinReattachesByName(t *testing.T) {
	s := newTestSession()
	aliceConn := seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.MarkDisconnected("bob-1")

	conn := &fakeConn{}
	if got := s.Rejoin("bob-2", conn, "Bob", RejoinHints{}); got != RejoinReconnected {
		t.Fatalf("Rejoin = %v, want RejoinReconnected", got)
	}

	room := s.snapshot()
	if len(room.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(room.Users))
	}
	bob := room.Users[1]
	if bob.ID != "bob-2" || bob.Disconnected || bob.DisconnectedAt != nil {
		t.Errorf("seat not reattached: %+v", bob)
	}

	var rejoined RoomRejoinedData
	conn.lastData(t, EventRoomRejoined, &rejoined)
	if !rejoined.IsReconnection || rejoined.IsCreator {
		t.Errorf("room-rejoined = {isReconnection:%v isCreator:%v}, want true/false", rejoined.IsReconnection, rejoined.IsCreator)
	}
	if conn.sawEvent(t, EventUserRejoined) {
		t.Error("rejoiner received its own user-rejoined broadcast")
	}
	if !aliceConn.sawEvent(t, EventUserRejoined) {
		t.Error("existing member did not receive user-rejoined")
	}
	checkInvariants(t, s)
}

func TestRejoinMatchesNameCaseInsensitively(t *testing.T) {
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.MarkDisconnected("bob-1")

	if got := s.Rejoin("bob-2", &fakeConn{}, "BOB", RejoinHints{}); got != RejoinReconnected {
		t.Fatalf("Rejoin = %v, want RejoinReconnected", got)
	}
	if got := len(s.snapshot().Users); got != 2 {
		t.Errorf("users = %d, want 2", got)
	}
}

func TestRejoinRekeysVote(t *testing.T) {
	// The vote survives when the seat still holds it under the old
	// handle (e.g. the drop was never noticed server-side).
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.CastVote("bob-1", "5")

	s.Rejoin("bob-2", &fakeConn{}, "Bob", RejoinHints{})

	room := s.snapshot()
	if _, ok := room.Votes["bob-1"]; ok {
		t.Error("vote still keyed by the old handle")
	}
	vote := room.Votes["bob-2"]
	if vote == nil || vote.Value == nil || *vote.Value != "5" {
		t.Fatalf("votes[bob-2] = %+v, want value 5", vote)
	}
	if vote.UserID != "bob-2" {
		t.Errorf("vote owner = %q, want bob-2", vote.UserID)
	}
	checkInvariants(t, s)
}

func TestRejoinSynthesizesVoteFromHint(t *testing.T) {
	// The disconnect deleted the ledger vote; the hint is the only
	// remaining record and restores it.
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.CastVote("bob-1", "5")
	s.MarkDisconnected("bob-1")

	s.Rejoin("bob-2", &fakeConn{}, "Bob", RejoinHints{
		VoteValue: strPtr("5"),
		ShowVotes: boolPtr(false),
	})

	room := s.snapshot()
	vote := room.Votes["bob-2"]
	if vote == nil || vote.Value == nil || *vote.Value != "5" {
		t.Fatalf("votes[bob-2] = %+v, want hint-restored value 5", vote)
	}
	if room.ShowVotes {
		t.Error("showVotes restored without a revealed-round claim")
	}
	checkInvariants(t, s)
}

func TestRejoinLedgerBeatsHint(t *testing.T) {
	// A standing ledger vote wins over a stale hint value.
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.CastVote("bob-1", "8")

	s.Rejoin("bob-2", &fakeConn{}, "Bob", RejoinHints{VoteValue: strPtr("3")})

	vote := s.snapshot().Votes["bob-2"]
	if vote == nil || vote.Value == nil || *vote.Value != "8" {
		t.Fatalf("votes[bob-2] = %+v, want ledger value 8", vote)
	}
}

func TestRejoinCreatorRecovery(t *testing.T) {
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.MarkDisconnected("alice-1")

	conn := &fakeConn{}
	s.Rejoin("alice-2", conn, "Alice", RejoinHints{})

	room := s.snapshot()
	if room.CreatorID != "alice-2" {
		t.Errorf("creatorId = %q, want alice-2", room.CreatorID)
	}
	alice := room.Users[0]
	if alice.Role != domain.RoleModerator {
		t.Errorf("recovered creator role = %s, want moderator", alice.Role)
	}
	if !s.hasModeratorLocked("alice-2") || s.hasModeratorLocked("alice-1") {
		t.Error("moderator entry not re-keyed to the new handle")
	}

	var rejoined RoomRejoinedData
	conn.lastData(t, EventRoomRejoined, &rejoined)
	if !rejoined.IsCreator {
		t.Error("room-rejoined did not acknowledge creator status")
	}
	checkInvariants(t, s)
}

func TestRejoinCreatorRecoveryAcrossDoubleDrop(t *testing.T) {
	// The creator drops, reconnects, and drops again before any state
	// settles; LastClientID keeps the chain matchable.
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")

	s.MarkDisconnected("alice-1")
	s.Rejoin("alice-2", &fakeConn{}, "Alice", RejoinHints{})
	s.MarkDisconnected("alice-2")
	s.Rejoin("alice-3", &fakeConn{}, "Alice", RejoinHints{})

	room := s.snapshot()
	if room.CreatorID != "alice-3" {
		t.Errorf("creatorId = %q, want alice-3", room.CreatorID)
	}
	checkInvariants(t, s)
}

func TestRejoinCreatorRecoveryViaHint(t *testing.T) {
	// Server lost the seat entirely; only the hint still says creator.
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.MarkDisconnected("bob-1")
	s.RemoveIfStillGone("bob-1")

	conn := &fakeConn{}
	if got := s.Rejoin("bob-2", conn, "Bob", RejoinHints{IsModerator: boolPtr(true)}); got != RejoinJoinedNew {
		t.Fatalf("Rejoin = %v, want RejoinJoinedNew", got)
	}

	room := s.snapshot()
	bob := room.Users[1]
	if bob.Role != domain.RoleModerator || !s.hasModeratorLocked("bob-2") {
		t.Error("moderator status not rebuilt from hint")
	}
	var rejoined RoomRejoinedData
	conn.lastData(t, EventRoomRejoined, &rejoined)
	if rejoined.IsReconnection {
		t.Error("fresh seat reported as reconnection")
	}
	checkInvariants(t, s)
}

func TestRejoinAsNewRoleHints(t *testing.T) {
	tests := []struct {
		name      string
		hints     RejoinHints
		wantRole  domain.Role
		wantVoter bool
	}{
		{name: "no hints defaults to participant", hints: RejoinHints{}, wantRole: domain.RoleParticipant, wantVoter: true},
		{name: "spectator role hint", hints: RejoinHints{Role: strPtr("spectator")}, wantRole: domain.RoleSpectator, wantVoter: false},
		{name: "moderator role hint", hints: RejoinHints{Role: strPtr("moderator")}, wantRole: domain.RoleModerator, wantVoter: true},
		{name: "explicit canVote overrides role", hints: RejoinHints{Role: strPtr("spectator"), CanVote: boolPtr(true)}, wantRole: domain.RoleSpectator, wantVoter: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			seatCreator(t, s)

			s.Rejoin("new-1", &fakeConn{}, "Newcomer", tt.hints)

			room := s.snapshot()
			u := room.Users[1]
			if u.Role != tt.wantRole || u.CanVote != tt.wantVoter {
				t.Errorf("role=%s canVote=%v, want %s/%v", u.Role, u.CanVote, tt.wantRole, tt.wantVoter)
			}
			checkInvariants(t, s)
		})
	}
}

func TestRejoinRevealRestoration(t *testing.T) {
	tests := []struct {
		name          string
		hints         RejoinHints
		wantShowVotes bool
	}{
		{
			name:          "both claims restore the reveal",
			hints:         RejoinHints{ShowVotes: boolPtr(true), IsVotingComplete: boolPtr(true)},
			wantShowVotes: true,
		},
		{
			name:          "showVotes alone does not",
			hints:         RejoinHints{ShowVotes: boolPtr(true)},
			wantShowVotes: false,
		},
		{
			name:          "completion alone does not",
			hints:         RejoinHints{IsVotingComplete: boolPtr(true)},
			wantShowVotes: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			seatCreator(t, s)
			seatUser(t, s, "bob-1", "Bob", "")
			s.MarkDisconnected("bob-1")

			s.Rejoin("bob-2", &fakeConn{}, "Bob", tt.hints)

			if got := s.snapshot().ShowVotes; got != tt.wantShowVotes {
				t.Errorf("showVotes = %v, want %v", got, tt.wantShowVotes)
			}
		})
	}
}

func TestRejoinIdempotent(t *testing.T) {
	s := newTestSession()
	seatCreator(t, s)
	seatUser(t, s, "bob-1", "Bob", "")
	s.Promote("alice-1", "bob-1")
	s.CastVote("bob-1", "5")
	s.MarkDisconnected("bob-1")

	hints := RejoinHints{
		IsModerator: boolPtr(true),
		VoteValue:   strPtr("5"),
	}
	s.Rejoin("bob-2", &fakeConn{}, "Bob", hints)
	s.Rejoin("bob-2", &fakeConn{}, "Bob", hints)

	room := s.snapshot()
	if len(room.Users) != 2 {
		t.Errorf("users = %d after repeated rejoin, want 2", len(room.Users))
	}
	if len(room.Moderators) != 2 {
		t.Errorf("moderators = %v, want exactly [alice-1 bob-2]", room.Moderators)
	}
	if len(room.Votes) != 1 {
		t.Errorf("votes = %d, want 1", len(room.Votes))
	}
	checkInvariants(t, s)
}

func TestRejoinZombieConnectionUnbound(t *testing.T) {
	// The old socket never closed cleanly; once the seat moves, the old
	// binding must not receive further broadcasts.
	s := newTestSession()
	seatCreator(t, s)
	oldConn := seatUser(t, s, "bob-1", "Bob", "")

	s.Rejoin("bob-2", &fakeConn{}, "Bob", RejoinHints{})
	before := oldConn.frameCount()
	s.CastVote("alice-1", "5")

	if oldConn.frameCount() != before {
		t.Error("stale connection still receiving broadcasts")
	}
}

func TestRejoinInvalidNameRejectedNotGone(t *testing.T) {
	s := newTestSession()
	seatCreator(t, s)

	conn := &fakeConn{}
	if got := s.Rejoin("bob-1", conn, "", RejoinHints{}); got != RejoinRejected {
		t.Fatalf("Rejoin = %v, want RejoinRejected", got)
	}
	if conn.frameCount() != 0 {
		t.Errorf("rejected rejoin received %v", conn.events(t))
	}
	if got := len(s.snapshot().Users); got != 1 {
		t.Errorf("users = %d after rejected rejoin, want 1", got)
	}
}

func TestRejoinClosedRoomGone(t *testing.T) {
	s := newTestSession()
	seatCreator(t, s)
	s.End("alice-1")

	if got := s.Rejoin("bob-1", &fakeConn{}, "Bob", RejoinHints{}); got != RejoinRoomGone {
		t.Errorf("Rejoin on ended room = %v, want RejoinRoomGone", got)
	}
}
