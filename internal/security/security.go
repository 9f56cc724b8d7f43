// internal/security/security.go
package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Session header and cookie names.
const (
	SessionHeader = "X-Session-Token"
	SessionCookie = "session"
)

// Session is an authenticated login.
type Session struct {
	Token   string    `json:"token"`
	UserID  string    `json:"userId"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	Expires time.Time `json:"expires"`
}

// UserSource looks up users and stores upgraded password hashes.
type UserSource interface {
	UserByEmail(email string) (data.User, bool)
	SetUserPassword(ctx context.Context, id, password string) error
}

// Sessions issues and checks session tokens.
type Sessions struct {
	users UserSource
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewSessions(users UserSource, ttl time.Duration) *Sessions {
	return &Sessions{
		users:    users,
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// GenerateToken returns a random URL-safe token.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// HashPassword returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// checkPassword compares against a bcrypt hash, or byte for byte against a
// legacy plaintext value. The second result reports a plaintext match.
func checkPassword(stored, given string) (ok, legacy bool) {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil, false
	}
	if stored == "" {
		return false, false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1, true
}

// Login checks credentials and opens a session. A user still stored with a
// plaintext password has it replaced by a bcrypt hash.
func (s *Sessions) Login(ctx context.Context, email, password string) (Session, error) {
	user, found := s.users.UserByEmail(email)
	if !found {
		logger.LogWarn("Login failed for unknown email %q", email)
		return Session{}, ErrInvalidCredentials
	}

	ok, legacy := checkPassword(user.Password, password)
	if !ok {
		logger.LogWarn("Login failed for %s: wrong password", user.Email)
		return Session{}, ErrInvalidCredentials
	}

	if legacy {
		if hash, err := HashPassword(password); err != nil {
			logger.LogError("Failed to hash password for %s: %v", user.Email, err)
		} else if err := s.users.SetUserPassword(ctx, user.ID, hash); err != nil {
			logger.LogError("Failed to upgrade password for %s: %v", user.Email, err)
		} else {
			logger.LogInfo("Upgraded stored password for %s to bcrypt", user.Email)
		}
	}

	token, err := GenerateToken()
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		Token:   token,
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Expires: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[token] = sess
	s.mu.Unlock()

	logger.LogInfo("User %s logged in", user.Email)
	return sess, nil
}

// Validate returns the live session for token.
func (s *Sessions) Validate(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, false
	}
	if s.now().After(sess.Expires) {
		delete(s.sessions, token)
		return Session{}, false
	}
	return sess, true
}

func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for token, sess := range s.sessions {
		if now.After(sess.Expires) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// CleanExpiredSessions periodically sweeps expired sessions until ctx ends.
func (s *Sessions) CleanExpiredSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.LogInfo("Session cleanup removed %d expired sessions", n)
			}
		}
	}
}

// TokenFromRequest reads the session token from the header, then the cookie.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(SessionHeader)); token != "" {
		return token
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// AddCORSHeaders adds CORS headers and handles OPTIONS requests globally. An
// empty origin disables it.
func AddCORSHeaders(origin string, next http.Handler) http.Handler {
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
