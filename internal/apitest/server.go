// Package apitest runs an in-process stand-in for the authentication API:
// login, get-me and token refresh backed by signed JWTs. Tests point the
// client at Server.URL and override individual endpoints to script failures.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	LoginPath   = "/api/v1/login/"
	ProfilePath = "/api/v1/get-me/"
	RefreshPath = "/api/v1/token/refresh/"

	SessionCookie = "sessionid"

	AccessTTL  = 5 * time.Minute
	RefreshTTL = 24 * time.Hour
)

// User is an account known to the server. ID is encoded as-is, so both
// numbers and strings can be exercised.
type User struct {
	ID       any    `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"-"`
}

// Server is a running fake API.
type Server struct {
	*httptest.Server

	// RotateRefresh makes the refresh endpoint issue a new refresh token.
	RotateRefresh bool

	secret []byte

	mu        sync.Mutex
	users     map[string]User
	overrides map[string]http.HandlerFunc
	hits      map[string]int
	lastAuth  map[string]string
	cookies   map[string]bool
}

// NewServer starts a server knowing users and stops it when t ends.
func NewServer(t testing.TB, users ...User) *Server {
	t.Helper()

	s := &Server{
		secret:    []byte("apitest-secret"),
		users:     make(map[string]User),
		overrides: make(map[string]http.HandlerFunc),
		hits:      make(map[string]int),
		lastAuth:  make(map[string]string),
		cookies:   make(map[string]bool),
	}
	for _, u := range users {
		s.users[u.Username] = u
	}

	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, s.route(LoginPath, http.MethodPost, s.handleLogin))
	mux.HandleFunc(ProfilePath, s.route(ProfilePath, http.MethodGet, s.handleGetMe))
	mux.HandleFunc(RefreshPath, s.route(RefreshPath, http.MethodPost, s.handleRefresh))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Override replaces the handler for path. Hits are still counted.
func (s *Server) Override(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = h
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// LastAuthorization returns the Authorization header of the latest request to path.
func (s *Server) LastAuthorization(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth[path]
}

// SawSessionCookie reports whether any request to path carried the session cookie.
func (s *Server) SawSessionCookie(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies[path]
}

// IssueTokens mints an access/refresh pair for userID.
func (s *Server) IssueTokens(userID string, accessTTL time.Duration) (access, refresh string, err error) {
	access, err = GenerateToken(userID, TokenTypeAccess, s.secret, accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = GenerateToken(userID, TokenTypeRefresh, s.secret, RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Server) route(path, method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[path]++
		s.lastAuth[path] = r.Header.Get("Authorization")
		if _, err := r.Cookie(SessionCookie); err == nil {
			s.cookies[path] = true
		}
		override := s.overrides[path]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		if r.Method != method {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method \"" + r.Method + "\" not allowed."})
			return
		}
		h(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	if in.Username == "" || in.Password == "" {
		body := map[string][]string{}
		if in.Username == "" {
			body["username"] = []string{"This field may not be blank."}
		}
		if in.Password == "" {
			body["password"] = []string{"This field may not be blank."}
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}

	s.mu.Lock()
	u, ok := s.users[in.Username]
	s.mu.Unlock()
	if !ok || u.Password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
		return
	}

	access, refresh, err := s.IssueTokens(u.Username, AccessTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: u.Username, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
		return
	}

	claims, err := ParseToken(raw, TokenTypeAccess, s.secret)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[claims.UserID]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	claims, err := ParseToken(in.Refresh, TokenTypeRefresh, s.secret)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}

	access, refresh, err := s.IssueTokens(claims.UserID, AccessTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := map[string]string{"access": access}
	if s.RotateRefresh {
		out["refresh"] = refresh
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
