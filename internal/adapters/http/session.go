package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	sessionKey = "poker-session"

	// Records older than this are treated as gone; matches the client
	// cache expiry so both sides forget a room at the same age.
	SessionMaxAge = time.Hour
)

// SessionRecord is the reconnect snapshot a client stashes between
// page loads: everything rejoin-room needs to rebuild its hints.
type SessionRecord struct {
	RoomID           string    `json:"roomId"`
	UserName         string    `json:"userName"`
	UserRole         string    `json:"userRole"`
	UserCanVote      bool      `json:"userCanVote"`
	IsCreator        bool      `json:"isCreator"`
	IsModerator      bool      `json:"isModerator"`
	RoomName         string    `json:"roomName"`
	VotingValues     []string  `json:"votingValues"`
	ShowVotes        bool      `json:"showVotes"`
	IsVotingComplete bool      `json:"isVotingComplete"`
	Timestamp        time.Time `json:"timestamp"`
}

func getSession(c *gin.Context) {
	s := sessions.Default(c)
	raw, ok := s.Get(sessionKey).(string)
	if !ok || raw == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
		return
	}

	var rec SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("corrupt session record, clearing")
		dropSession(c, s)
		return
	}
	if time.Since(rec.Timestamp) > SessionMaxAge {
		dropSession(c, s)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func saveSession(c *gin.Context) {
	var rec SessionRecord
	if err := c.ShouldBindJSON(&rec); err != nil || rec.RoomID == "" || rec.UserName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session record"})
		return
	}
	rec.Timestamp = time.Now()

	raw, err := json.Marshal(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}

	s := sessions.Default(c)
	s.Set(sessionKey, string(raw))
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func clearSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Delete(sessionKey)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session clear failed")
	}
	c.Status(http.StatusNoContent)
}

func dropSession(c *gin.Context, s sessions.Session) {
	s.Delete(sessionKey)
	_ = s.Save()
	c.JSON(http.StatusNotFound, gin.H{"error": "no session"})
}
