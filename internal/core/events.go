package core

import (
	"encoding/json"

	"github.com/dkeye/Poker/internal/domain"
)

// Inbound event names. The naming is a compatibility contract with
// deployed clients and must not change.
const (
	EventCreateRoom            = "create-room"
	EventJoinRoom              = "join-room"
	EventRejoinRoom            = "rejoin-room"
	EventVote                  = "vote"
	EventToggleModeratorVoting = "toggle-moderator-voting"
	EventUpdateVotingValues    = "update-voting-values"
	EventRevealVotes           = "reveal-votes"
	EventResetVoting           = "reset-voting"
	EventPromoteToModerator    = "promote-to-moderator"
	EventDemoteFromModerator   = "demote-from-moderator"
	EventEndRoom               = "end-room"
)

// Outbound event names.
const (
	EventRoomCreated            = "room-created"
	EventRoomJoined             = "room-joined"
	EventRoomRejoined           = "room-rejoined"
	EventRoomNotFound           = "room-not-found"
	EventUsernameTaken          = "username-taken"
	EventUserJoined             = "user-joined"
	EventUserRejoined           = "user-rejoined"
	EventUserDisconnected       = "user-disconnected"
	EventUserLeft               = "user-left"
	EventVoteUpdated            = "vote-updated"
	EventModeratorVotingToggled = "moderator-voting-toggled"
	EventVotingValuesUpdated    = "voting-values-updated"
	EventRevealStarted          = "reveal-started"
	EventVotesRevealed          = "votes-revealed"
	EventRevealModalClosed      = "reveal-modal-closed"
	EventVotingReset            = "voting-reset"
	EventUserPromoted           = "user-promoted"
	EventUserDemoted            = "user-demoted"
	EventRoomEnded              = "room-ended"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent marshals an event envelope into a wire frame.
func EncodeEvent(event string, data any) (Frame, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Inbound payloads.

type CreateRoomData struct {
	UserName string `json:"userName"`
	RoomName string `json:"roomName"`
}

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	Role     string `json:"role,omitempty"`
}

// RejoinRoomData carries the client-held session hints. Pointers keep
// "absent" distinguishable from zero values; the protocol only trusts a
// hint when the server's own ledger has nothing better.
type RejoinRoomData struct {
	RoomID                  string  `json:"roomId"`
	UserName                string  `json:"userName"`
	SessionShowVotes        *bool   `json:"sessionShowVotes,omitempty"`
	SessionIsVotingComplete *bool   `json:"sessionIsVotingComplete,omitempty"`
	SessionUserVote         *string `json:"sessionUserVote,omitempty"`
	SessionIsModerator      *bool   `json:"sessionIsModerator,omitempty"`
	SessionIsCreator        *bool   `json:"sessionIsCreator,omitempty"`
	SessionUserRole         *string `json:"sessionUserRole,omitempty"`
	SessionCanVote          *bool   `json:"sessionCanVote,omitempty"`
}

func (d RejoinRoomData) Hints() RejoinHints {
	return RejoinHints{
		ShowVotes:        d.SessionShowVotes,
		IsVotingComplete: d.SessionIsVotingComplete,
		VoteValue:        d.SessionUserVote,
		IsModerator:      d.SessionIsModerator,
		IsCreator:        d.SessionIsCreator,
		Role:             d.SessionUserRole,
		CanVote:          d.SessionCanVote,
	}
}

type VoteData struct {
	RoomID string `json:"roomId"`
	Value  string `json:"value"`
}

type RoomOnlyData struct {
	RoomID string `json:"roomId"`
}

type UpdateVotingValuesData struct {
	RoomID string   `json:"roomId"`
	Values []string `json:"values"`
}

type TargetUserData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// Outbound payloads.

type RoomCreatedData struct {
	RoomID domain.RoomID `json:"roomId"`
	Room   *domain.Room  `json:"room"`
}

type RoomPayload struct {
	Room *domain.Room `json:"room"`
}

type UserRoomPayload struct {
	User *domain.User `json:"user"`
	Room *domain.Room `json:"room"`
}

type UsernameTakenData struct {
	Message string `json:"message"`
}

type RoomRejoinedData struct {
	Room           *domain.Room `json:"room"`
	IsReconnection bool         `json:"isReconnection"`
	IsCreator      bool         `json:"isCreator"`
}

type UserPromotedData struct {
	Room           *domain.Room    `json:"room"`
	PromotedUserID domain.ClientID `json:"promotedUserId"`
}

type UserDemotedData struct {
	Room          *domain.Room    `json:"room"`
	DemotedUserID domain.ClientID `json:"demotedUserId"`
}

type RoomEndedData struct {
	RoomID   domain.RoomID `json:"roomId"`
	RoomName string        `json:"roomName"`
	Message  string        `json:"message"`
}

type UserGonePayload struct {
	UserID domain.ClientID `json:"userId"`
	Room   *domain.Room    `json:"room"`
}
