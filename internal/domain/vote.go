package domain

// Vote is one cast estimate. The map key in Room.Votes and UserID must
// both equal the owner's current ClientID; reconnection re-keys them
// together with the user record.
type Vote struct {
	UserID   ClientID `json:"userId"`
	Value    *string  `json:"value"`
	HasVoted bool     `json:"hasVoted"`
}

func NewVote(owner ClientID, value *string) *Vote {
	return &Vote{UserID: owner, Value: value, HasVoted: true}
}
