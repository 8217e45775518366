package session

import (
	"encoding/json"
	"strings"

	"koi_orders/internal/api"
	"koi_orders/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const fallbackInitial = "U"

// Session is the single owner of the cached token/user slots. It is created
// at login, re-read on every screen change, and destroyed at logout.
type Session struct {
	store  *store.Store
	logger *zap.Logger

	token string
	user  *api.User
}

func New(st *store.Store, logger *zap.Logger) *Session {
	s := &Session{
		store:  st,
		logger: logger.Named("session"),
	}
	s.Refresh()
	return s
}

// Refresh re-reads the cached token and user from the store. A corrupt user
// snapshot degrades to nil, never to an error.
func (s *Session) Refresh() {
	s.token = s.store.LoadToken()
	s.user = nil
	if raw := s.store.LoadUserJSON(); len(raw) > 0 {
		var u api.User
		if err := json.Unmarshal(raw, &u); err == nil {
			s.user = &u
		}
	}
}

// Init caches a fresh token and optional user snapshot after a completed
// authentication. Admin logins skip the PIN step and arrive without a user.
func (s *Session) Init(token string, user *api.User) {
	s.token = token
	s.user = user
	s.store.SaveToken(token)
	if user != nil {
		if raw, err := json.Marshal(user); err == nil {
			s.store.SaveUserJSON(raw)
		}
	} else {
		// A login without a user snapshot must not resurface a previous
		// account's cached one.
		s.store.ClearUser()
	}
	s.logger.Info("session initialized", zap.Bool("has_user", user != nil))
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) User() *api.User {
	return s.user
}

func (s *Session) LoggedIn() bool {
	return s.token != ""
}

// Clear wipes the cached session; the logout path.
func (s *Session) Clear() {
	s.token = ""
	s.user = nil
	s.store.ClearToken()
	s.store.ClearUser()
	s.logger.Info("session cleared")
}

// Initial returns the single character shown in the header avatar:
// display name, then email, then the token's email claim, then "U".
func (s *Session) Initial() string {
	if s.user != nil {
		if initial := firstUpper(s.user.DisplayName); initial != "" {
			return initial
		}
		if initial := firstUpper(s.user.Email); initial != "" {
			return initial
		}
	}
	if initial := initialFromToken(s.token); initial != "" {
		return initial
	}
	return fallbackInitial
}

// initialFromToken decodes the token payload without verification, purely
// to pick a display letter. Cosmetic only: nothing here may ever feed an
// authorization decision, the token stays an opaque bearer string.
func initialFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return firstUpper(email)
}

func firstUpper(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0]))
}
