// Package auth signs campaign owners in with Google OAuth and keeps their
// sessions in memory. Any Google account may own campaigns; the session
// email is the owner identity every campaign row is scoped to.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/prizejet/prizejet/internal/config"
)

// GoogleUserInfo represents the user info returned by Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Session represents an authenticated owner session
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Pro       bool      `json:"pro"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager handles Google OAuth authentication
type Manager struct {
	config       *config.AuthConfig
	oauth2Config *oauth2.Config
	sessions     map[string]*Session
	sessionMu    sync.RWMutex
	baseURL      string
}

// NewManager creates a new authentication manager
func NewManager(cfg *config.AuthConfig, baseURL string) *Manager {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  baseURL + "/auth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &Manager{
		config:       cfg,
		oauth2Config: oauth2Config,
		sessions:     make(map[string]*Session),
		baseURL:      baseURL,
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HandleLogin initiates the Google OAuth flow
func (am *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in a cookie for verification
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300, // 5 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, am.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusTemporaryRedirect)
}

// HandleCallback processes the OAuth callback from Google
func (am *Manager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		log.Printf("[Auth] No state cookie found: %v", err)
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		log.Printf("[Auth] State mismatch")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Printf("[Auth] Google returned error: %s", errMsg)
		http.Redirect(w, r, "/?error="+errMsg, http.StatusTemporaryRedirect)
		return
	}

	code := r.URL.Query().Get("code")
	token, err := am.oauth2Config.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("[Auth] Failed to exchange code: %v", err)
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	userInfo, err := am.getUserInfo(token.AccessToken)
	if err != nil {
		log.Printf("[Auth] Failed to get user info: %v", err)
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	email := strings.ToLower(userInfo.Email)

	sessionID, err := randomToken()
	if err != nil {
		log.Printf("[Auth] Failed to generate session ID: %v", err)
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	session := &Session{
		UserID:    userInfo.ID,
		Email:     email,
		Name:      userInfo.Name,
		Picture:   userInfo.Picture,
		Pro:       am.config.IsPro(email),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Duration(am.config.CookieMaxAge) * time.Second),
	}

	am.sessionMu.Lock()
	am.sessions[sessionID] = session
	am.sessionMu.Unlock()

	log.Printf("[Auth] User logged in: %s (%s)", email, userInfo.Name)

	http.SetCookie(w, &http.Cookie{
		Name:     am.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   am.config.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout logs out the user
func (am *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(am.config.CookieName)
	if err == nil {
		am.sessionMu.Lock()
		delete(am.sessions, cookie.Value)
		am.sessionMu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:   am.config.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleUserInfo returns the current user's info as JSON
func (am *Manager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	session := am.GetSession(r)
	w.Header().Set("Content-Type", "application/json")
	if session == nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"authenticated": true,
		"user": map[string]interface{}{
			"id":      session.UserID,
			"email":   session.Email,
			"name":    session.Name,
			"picture": session.Picture,
			"pro":     session.Pro,
		},
	})
}

// GetSession returns the session for the current request, or nil if not authenticated
func (am *Manager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(am.config.CookieName)
	if err != nil {
		return nil
	}

	am.sessionMu.RLock()
	session, exists := am.sessions[cookie.Value]
	am.sessionMu.RUnlock()

	if !exists {
		return nil
	}

	if time.Now().After(session.ExpiresAt) {
		am.sessionMu.Lock()
		delete(am.sessions, cookie.Value)
		am.sessionMu.Unlock()
		return nil
	}

	return session
}

// IsAuthenticated checks if the request is from an authenticated user
func (am *Manager) IsAuthenticated(r *http.Request) bool {
	return am.GetSession(r) != nil
}

// RequireAuth is middleware that rejects unauthenticated API requests.
// Public landing-page routes never pass through it.
func (am *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !am.IsAuthenticated(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getUserInfo fetches the user's profile from Google
func (am *Manager) getUserInfo(accessToken string) (*GoogleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	return &userInfo, nil
}

// CleanupExpiredSessions removes expired sessions periodically
func (am *Manager) CleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		for range ticker.C {
			am.sessionMu.Lock()
			now := time.Now()
			for id, session := range am.sessions {
				if now.After(session.ExpiresAt) {
					delete(am.sessions, id)
				}
			}
			am.sessionMu.Unlock()
		}
	}()
}
