package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"frontoffice/internal/logger"
	"frontoffice/internal/security"
)

// Request context keys
type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	SessionKey   contextKey = "session"
)

// maxBodyBytes caps JSON request bodies. A full collection replace is the
// largest legitimate payload.
const maxBodyBytes = 8 << 20

// APIError is the body of every failed API response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id"`
}

type APIResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id"`
}

// Login attempts per client IP
var (
	loginAttempts  = make(map[string]time.Time)
	loginAttemptMu sync.Mutex
	loginInterval  = time.Second
)

// Chain for endpoints that need a session.
func APIMiddleware(sessions *security.Sessions) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequestID(
			Logging(
				SessionValidation(sessions,
					ErrorHandling(next),
				),
			),
		)
	}
}

// PublicMiddleware is the chain for endpoints open without a session.
func PublicMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return RequestID(Logging(ErrorHandling(next)))
}

// RequestID tags the request with a fresh id, echoed in X-Request-ID and in
// every envelope.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, id)))
	}
}

func Logging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestIDFrom(r.Context())
		logger.LogInfo("-> %s %s id=%s ip=%s", r.Method, r.URL.Path, id, logger.GetClientIP(r))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.LogInfo("<- %s %s id=%s status=%d took=%s",
			r.Method, r.URL.Path, id, rec.status, time.Since(start).Round(time.Millisecond))
	}
}

// GetSession retrieves the session stored by SessionValidation.
func GetSession(ctx context.Context) (security.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(security.Session)
	return sess, ok
}

// SessionValidation rejects requests without a live session.
func SessionValidation(sessions *security.Sessions, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := security.TokenFromRequest(r)
		if token == "" {
			WriteAPIError(w, r, http.StatusUnauthorized, "unauthorized", "Session token required", "")
			return
		}

		sess, ok := sessions.Validate(token)
		if !ok {
			WriteAPIError(w, r, http.StatusUnauthorized, "unauthorized", "Session is invalid or expired", "")
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// LoginRateLimit allows one login attempt per second per client IP.
func LoginRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := logger.GetClientIP(r)

		loginAttemptMu.Lock()
		last, exists := loginAttempts[ip]
		now := time.Now()
		if exists && now.Sub(last) < loginInterval {
			loginAttemptMu.Unlock()
			WriteAPIError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded",
				"Too many login attempts. Please wait before trying again.", "")
			return
		}
		loginAttempts[ip] = now
		loginAttemptMu.Unlock()

		next.ServeHTTP(w, r)
	}
}

// CleanLoginAttempts forgets attempts older than a minute, once a minute, until
// ctx ends.
func CleanLoginAttempts(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			loginAttemptMu.Lock()
			for ip, last := range loginAttempts {
				if now.Sub(last) > time.Minute {
					delete(loginAttempts, ip)
				}
			}
			loginAttemptMu.Unlock()
		}
	}
}

// ErrorHandling turns a handler panic into a 500 envelope.
func ErrorHandling(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.LogError("panic id=%s %s %s: %v\n%s",
					requestIDFrom(r.Context()), r.Method, r.URL.Path, rec, debug.Stack())
				WriteAPIError(w, r, http.StatusInternalServerError, "internal_error", "Unexpected server error", "")
			}
		}()
		next.ServeHTTP(w, r)
	}
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func writeEnvelope(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogWarn("Writing response: %v", err)
	}
}

// WriteAPIError writes the error envelope.
func WriteAPIError(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	writeEnvelope(w, status, APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestIDFrom(r.Context()),
	})
}

// WriteAPISuccess writes data in a 200 success envelope.
func WriteAPISuccess(w http.ResponseWriter, r *http.Request, data any) {
	WriteAPIStatus(w, r, http.StatusOK, data)
}

func WriteAPIStatus(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, status, APIResponse{Success: true, Data: data, RequestID: requestIDFrom(r.Context())})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requireJSON(r *http.Request) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("expected application/json body, got %q", ct)
	}
	return nil
}

// ParseJSONRequest decodes the body into v, rejecting unknown fields.
func ParseJSONRequest(r *http.Request, v any) error {
	if err := requireJSON(r); err != nil {
		return err
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ReadJSONBody returns the raw body for lenient decoding, such as partial
// updates that may carry fields the server ignores.
func ReadJSONBody(r *http.Request) ([]byte, error) {
	if err := requireJSON(r); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	return body, nil
}
