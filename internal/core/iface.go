package core

import (
	"time"

	"github.com/dkeye/Poker/internal/domain"
)

// Frame is a raw wire payload (a marshaled event envelope).
type Frame []byte

// SignalConnection abstracts the messaging transport for one client.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Timing holds the scheduled-transition delays of a room. Injected so
// tests can run the reveal machine in milliseconds.
type Timing struct {
	RevealDelay      time.Duration
	RevealModalDelay time.Duration
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	ID             domain.RoomID `json:"id"`
	Name           string        `json:"name"`
	UserCount      int           `json:"userCount"`
	ConnectedCount int           `json:"connectedCount"`
	CreatedAt      time.Time     `json:"createdAt"`
}
