package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prizejet/prizejet/internal/config"
)

func testManager() *Manager {
	cfg := &config.AuthConfig{
		Enabled:      true,
		CookieName:   "prizejet_session",
		CookieMaxAge: 3600,
		ProUsers:     []string{"pro@example.com"},
	}
	return NewManager(cfg, "http://localhost:8080")
}

func addSession(am *Manager, id string, s *Session) {
	am.sessionMu.Lock()
	am.sessions[id] = s
	am.sessionMu.Unlock()
}

func requestWithCookie(am *Manager, sessionID string) *http.Request {
	r := httptest.NewRequest("GET", "/api/campaigns", nil)
	r.AddCookie(&http.Cookie{Name: am.config.CookieName, Value: sessionID})
	return r
}

func TestGetSession(t *testing.T) {
	am := testManager()
	addSession(am, "sid-1", &Session{
		Email:     "owner@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	s := am.GetSession(requestWithCookie(am, "sid-1"))
	if s == nil || s.Email != "owner@example.com" {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestExpiredSessionEvicted(t *testing.T) {
	am := testManager()
	addSession(am, "sid-1", &Session{
		Email:     "owner@example.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	if s := am.GetSession(requestWithCookie(am, "sid-1")); s != nil {
		t.Fatalf("expired session returned: %+v", s)
	}
	am.sessionMu.RLock()
	_, exists := am.sessions["sid-1"]
	am.sessionMu.RUnlock()
	if exists {
		t.Fatal("expired session must be evicted")
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	am := testManager()
	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/campaigns", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthPassesSession(t *testing.T) {
	am := testManager()
	addSession(am, "sid-1", &Session{Email: "owner@example.com", ExpiresAt: time.Now().Add(time.Hour)})

	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookie(am, "sid-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLogoutDropsSession(t *testing.T) {
	am := testManager()
	addSession(am, "sid-1", &Session{Email: "owner@example.com", ExpiresAt: time.Now().Add(time.Hour)})

	rec := httptest.NewRecorder()
	am.HandleLogout(rec, requestWithCookie(am, "sid-1"))

	if s := am.GetSession(requestWithCookie(am, "sid-1")); s != nil {
		t.Fatal("session must be gone after logout")
	}
}

func TestProFlagOnSession(t *testing.T) {
	am := testManager()
	if !am.config.IsPro("pro@example.com") {
		t.Fatal("configured pro user not recognized")
	}
	if am.config.IsPro("free@example.com") {
		t.Fatal("unknown user must not be pro")
	}
}
