package api

import (
	"net/http"
	"time"

	"frontoffice/internal/middleware"
	"frontoffice/internal/security"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler opens a session and sets the session cookie.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     security.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.Expires,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.WriteAPISuccess(w, r, sess)
}

// LogoutHandler revokes the caller's session.
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	s.sessions.Revoke(security.TokenFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:     security.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	middleware.WriteAPISuccess(w, r, map[string]bool{"loggedOut": true})
}

// SessionHandler returns the caller's session.
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSession(r.Context())
	middleware.WriteAPISuccess(w, r, sess)
}
