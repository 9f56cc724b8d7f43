package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
	"frontoffice/internal/security"
)

func TestMain(m *testing.M) {
	logger.UseWriter(io.Discard)
	os.Exit(m.Run())
}

type oneUser struct{ user data.User }

func (o oneUser) UserByEmail(email string) (data.User, bool) {
	return o.user, strings.EqualFold(email, o.user.Email)
}

func (o oneUser) SetUserPassword(context.Context, string, string) error { return nil }

func decodeError(t *testing.T, body io.Reader) APIError {
	t.Helper()
	var e APIError
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return e
}

func TestAPIMiddlewareRequiresSession(t *testing.T) {
	hash, _ := security.HashPassword("pw")
	sessions := security.NewSessions(oneUser{data.User{ID: "u1", Email: "a@b.c", Password: hash}}, time.Hour)

	handler := APIMiddleware(sessions)(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSession(r.Context())
		if !ok {
			t.Error("session missing from context")
		}
		WriteAPISuccess(w, r, map[string]string{"user": sess.UserID})
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/api/db", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	e := decodeError(t, rr.Body)
	if e.Code != "unauthorized" || e.RequestID == "" {
		t.Errorf("error body = %+v", e)
	}

	sess, err := sessions.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/db", nil)
	req.Header.Set(security.SessionHeader, sess.Token)
	rr = httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	var resp APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil || !resp.Success {
		t.Errorf("success body = %+v, %v", resp, err)
	}
}

func TestErrorHandlingRecoversPanics(t *testing.T) {
	handler := PublicMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	handler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if e := decodeError(t, rr.Body); e.Code != "internal_error" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	handler := LoginRateLimit(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "203.0.113.9:5555"

	rr := httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("first attempt: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second attempt: expected 429, got %d", rr.Code)
	}
}

func TestParseJSONRequest(t *testing.T) {
	var v struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x"}`))
	if err := ParseJSONRequest(req, &v); err == nil {
		t.Error("expected content-type error")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	if err := ParseJSONRequest(req, &v); err == nil {
		t.Error("expected unknown field error")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"x","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	body, err := ReadJSONBody(req)
	if err != nil || !strings.Contains(string(body), "extra") {
		t.Errorf("ReadJSONBody = %s, %v", body, err)
	}
}
