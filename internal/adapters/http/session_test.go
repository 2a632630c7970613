package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("PokerSessions", cookie.NewStore([]byte("test-secret"))))
	r.GET("/api/session", getSession)
	r.POST("/api/session", saveSession)
	r.DELETE("/api/session", clearSession)

	// Injects a raw record bypassing saveSession's timestamping.
	r.POST("/inject", func(c *gin.Context) {
		body, _ := c.GetRawData()
		s := sessions.Default(c)
		s.Set(sessionKey, string(body))
		_ = s.Save()
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionRoundTrip(t *testing.T) {
	r := newSessionRouter()

	w := doRequest(r, http.MethodPost, "/api/session", `{"roomId":"r1","userName":"Alice","userRole":"moderator","isCreator":true}`, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST status = %d, want 204", w.Code)
	}
	cookies := w.Result().Cookies()

	w = doRequest(r, http.MethodGet, "/api/session", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", w.Code)
	}
	var rec SessionRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if rec.RoomID != "r1" || rec.UserName != "Alice" || !rec.IsCreator {
		t.Errorf("record = %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Error("server did not stamp the record")
	}
}

func TestSessionAbsent(t *testing.T) {
	r := newSessionRouter()
	if w := doRequest(r, http.MethodGet, "/api/session", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404", w.Code)
	}
}

func TestSessionValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "not-json"},
		{name: "missing roomId", body: `{"userName":"Alice"}`},
		{name: "missing userName", body: `{"roomId":"r1"}`},
	}
	r := newSessionRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doRequest(r, http.MethodPost, "/api/session", tt.body, nil); w.Code != http.StatusBadRequest {
				t.Errorf("POST status = %d, want 400", w.Code)
			}
		})
	}
}

func TestSessionClear(t *testing.T) {
	r := newSessionRouter()
	w := doRequest(r, http.MethodPost, "/api/session", `{"roomId":"r1","userName":"Alice"}`, nil)
	cookies := w.Result().Cookies()

	w = doRequest(r, http.MethodDelete, "/api/session", "", cookies)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", w.Code)
	}
	for _, nc := range w.Result().Cookies() {
		replaced := false
		for i, c := range cookies {
			if c.Name == nc.Name {
				cookies[i] = nc
				replaced = true
			}
		}
		if !replaced {
			cookies = append(cookies, nc)
		}
	}

	if w = doRequest(r, http.MethodGet, "/api/session", "", cookies); w.Code != http.StatusNotFound {
		t.Errorf("GET after DELETE status = %d, want 404", w.Code)
	}
}

func TestSessionExpired(t *testing.T) {
	r := newSessionRouter()

	stale, _ := json.Marshal(SessionRecord{
		RoomID:    "r1",
		UserName:  "Alice",
		Timestamp: time.Now().Add(-SessionMaxAge - time.Minute),
	})
	w := doRequest(r, http.MethodPost, "/inject", string(stale), nil)
	cookies := w.Result().Cookies()

	w = doRequest(r, http.MethodGet, "/api/session", "", cookies)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404 for expired record", w.Code)
	}
}

func TestSessionCorrupt(t *testing.T) {
	r := newSessionRouter()
	w := doRequest(r, http.MethodPost, "/inject", "{broken", nil)
	cookies := w.Result().Cookies()

	if w = doRequest(r, http.MethodGet, "/api/session", "", cookies); w.Code != http.StatusNotFound {
		t.Errorf("GET status = %d, want 404 for corrupt record", w.Code)
	}
}
