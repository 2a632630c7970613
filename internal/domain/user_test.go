package domain

import (
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{in: "spectator", want: RoleSpectator},
		{in: "participant", want: RoleParticipant},
		{in: "", want: RoleParticipant},
		{in: "moderator", want: RoleParticipant},
		{in: "nonsense", want: RoleParticipant},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewUserEligibility(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{role: RoleParticipant, want: true},
		{role: RoleSpectator, want: false},
		{role: RoleModerator, want: false}, // creators opt in explicitly
	}
	for _, tt := range tests {
		u, err := NewUser("c1", "Alice", tt.role)
		if err != nil {
			t.Fatalf("NewUser(%s): %v", tt.role, err)
		}
		if u.CanVote != tt.want {
			t.Errorf("NewUser(%s).CanVote = %v, want %v", tt.role, u.CanVote, tt.want)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "ok", in: "Alice"},
		{name: "empty", in: "", wantErr: ErrUsernameEmpty},
		{name: "max length ok", in: strings.Repeat("a", MaxUsernameLen)},
		{name: "too long", in: strings.Repeat("a", MaxUsernameLen+1), wantErr: ErrUsernameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateUsername(tt.in); err != tt.wantErr {
				t.Errorf("ValidateUsername = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "ok", in: "Sprint 1"},
		{name: "empty", in: "", wantErr: ErrRoomNameEmpty},
		{name: "too long", in: strings.Repeat("r", MaxRoomNameLen+1), wantErr: ErrRoomNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateRoomName(tt.in); err != tt.wantErr {
				t.Errorf("ValidateRoomName = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultVotingValues(t *testing.T) {
	deck := DefaultVotingValues()
	if len(deck) != 12 {
		t.Fatalf("deck = %v, want 12 cards", deck)
	}
	if deck[0] != "0" || deck[len(deck)-1] != "?" {
		t.Errorf("deck = %v, want 0 first and ? last", deck)
	}
	// Callers mutate their copy freely.
	deck[0] = "X"
	if DefaultVotingValues()[0] != "0" {
		t.Error("DefaultVotingValues returns a shared slice")
	}
}
