// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

const (
	MaxUsernameLen = 36
	MaxRoomNameLen = 64
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrRoomNameEmpty   = errors.New("room name empty")
)

// ClientID identifies a live transport connection. It is reassigned on
// every reconnect and must never be treated as a stable user identity;
// the display name is the identity key.
type ClientID string

type Role string

const (
	RoleModerator   Role = "moderator"
	RoleParticipant Role = "participant"
	RoleSpectator   Role = "spectator"
)

// ParseRole maps a client-supplied role string to a joinable role.
// Moderator is never joinable directly; it is granted by creation,
// promotion, or reconnection recovery.
func ParseRole(s string) Role {
	if Role(s) == RoleSpectator {
		return RoleSpectator
	}
	return RoleParticipant
}

// User is a named participant of a room. Disconnected/DisconnectedAt and
// LastClientID form the awaiting-reconnect state: while Disconnected is
// true the seat is held for the grace window and LastClientID keeps the
// handle the user held before the drop, so creator and moderator status
// stay matchable across the reconnect.
type User struct {
	ID             ClientID   `json:"id"`
	Name           string     `json:"name"`
	Role           Role       `json:"role"`
	CanVote        bool       `json:"canVote"`
	Disconnected   bool       `json:"isDisconnected"`
	DisconnectedAt *time.Time `json:"disconnectedAt,omitempty"`
	LastClientID   ClientID   `json:"-"`
}

func NewUser(id ClientID, name string, role Role) (*User, error) {
	if err := ValidateUsername(name); err != nil {
		return nil, err
	}
	return &User{
		ID:      id,
		Name:    name,
		Role:    role,
		CanVote: role == RoleParticipant,
	}, nil
}

func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func ValidateRoomName(name string) error {
	if len(name) == 0 {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
