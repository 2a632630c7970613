package domain

import "time"

type RoomID string

// Room is an isolated estimation session. The JSON shape is part of the
// wire contract and mirrors what clients already consume; Users keeps
// insertion order for stable redisplay.
type Room struct {
	ID               RoomID             `json:"id"`
	Name             string             `json:"name"`
	Users            []*User            `json:"users"`
	Votes            map[ClientID]*Vote `json:"votes"`
	IsVotingComplete bool               `json:"isVotingComplete"`
	ShowVotes        bool               `json:"showVotes"`
	IsRevealing      bool               `json:"isRevealing"`
	VotingValues     []string           `json:"votingValues"`
	CreatedAt        time.Time          `json:"createdAt"`
	Moderators       []ClientID         `json:"moderators"`
	CreatorID        ClientID           `json:"creatorId"`
}

// DefaultVotingValues is the standard 12-card Fibonacci deck.
func DefaultVotingValues() []string {
	return []string{"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "?"}
}

func NewRoom(id RoomID, name string, createdAt time.Time) *Room {
	return &Room{
		ID:           id,
		Name:         name,
		Users:        make([]*User, 0, 4),
		Votes:        make(map[ClientID]*Vote),
		VotingValues: DefaultVotingValues(),
		CreatedAt:    createdAt,
		Moderators:   make([]ClientID, 0, 1),
	}
}
