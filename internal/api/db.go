package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
	"frontoffice/internal/middleware"
	"frontoffice/internal/state"
)

type setRequest struct {
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// GetDBHandler returns the whole snapshot. Password values never leave the
// server.
func (s *Server) GetDBHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	for i := range snap.Users {
		snap.Users[i].Password = ""
	}
	middleware.WriteAPISuccess(w, r, snap)
}

// SetDBHandler replaces one collection.
func (s *Server) SetDBHandler(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	if !data.ValidKey(req.Key) {
		writeError(w, r, fmt.Errorf("%w: %q", data.ErrUnknownCollection, req.Key))
		return
	}

	raw := req.Data
	if req.Key == data.KeyUsers {
		var err error
		if raw, err = keepPasswords(s.state.Snapshot().Users, raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := s.state.Replace(r.Context(), req.Key, raw); err != nil {
		writeError(w, r, err)
		return
	}

	sess, _ := middleware.GetSession(r.Context())
	logger.LogInfo("Collection %s replaced by %s", req.Key, sess.Email)
	middleware.WriteAPISuccess(w, r, map[string]string{"key": req.Key})
}

// keepPasswords fills blank passwords in an incoming users list from the stored
// users with the same id. GET /api/db blanks them, so a client writing the list
// back would otherwise wipe every password.
func keepPasswords(current []data.User, raw json.RawMessage) (json.RawMessage, error) {
	var incoming []data.User
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return nil, fmt.Errorf("%w: users: %v", state.ErrInvalid, err)
	}
	if incoming == nil {
		incoming = []data.User{}
	}

	stored := make(map[string]string, len(current))
	for _, u := range current {
		stored[u.ID] = u.Password
	}
	for i := range incoming {
		if incoming[i].Password == "" {
			incoming[i].Password = stored[incoming[i].ID]
		}
	}
	return json.Marshal(incoming)
}
