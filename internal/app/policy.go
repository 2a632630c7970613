package app

import "github.com/dkeye/Poker/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what to do with a connection whose send queue
// overflowed during a broadcast.
type Policy interface {
	OnBackpressure(cid domain.ClientID) BackpressureAction
}

// SimplePolicy kicks slow consumers; the client reconnects through the
// normal rejoin path and recovers its state from the room ledger.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(domain.ClientID) BackpressureAction {
	return KickMember
}
