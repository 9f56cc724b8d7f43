// Package api exposes the state commands and derived reports over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"frontoffice/internal/data"
	"frontoffice/internal/finance"
	"frontoffice/internal/info"
	"frontoffice/internal/logger"
	"frontoffice/internal/middleware"
	"frontoffice/internal/security"
	"frontoffice/internal/state"
)

// Server holds what the handlers need.
type Server struct {
	state    *state.State
	sessions *security.Sessions
	agg      *finance.Aggregator
	page     *info.Page

	// SecureCookies marks the session cookie Secure. Off for plain-HTTP dev.
	SecureCookies bool
}

func NewServer(st *state.State, sessions *security.Sessions, agg *finance.Aggregator) *Server {
	return &Server{
		state:    st,
		sessions: sessions,
		agg:      agg,
		page:     info.NewPage(st, agg),
	}
}

// Routes registers every endpoint on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	protected := middleware.APIMiddleware(s.sessions)

	mux.HandleFunc("GET /healthz", s.HealthHandler)
	mux.HandleFunc("GET /info", protected(s.page.InfoPageHandler))

	// Session
	mux.HandleFunc("POST /api/login", middleware.PublicMiddleware(middleware.LoginRateLimit(s.LoginHandler)))
	mux.HandleFunc("POST /api/logout", protected(s.LogoutHandler))
	mux.HandleFunc("GET /api/session", protected(s.SessionHandler))
	mux.HandleFunc("GET /api/stats", protected(s.StatsHandler))

	// Raw key-based access
	mux.HandleFunc("GET /api/db", protected(s.GetDBHandler))
	mux.HandleFunc("POST /api/db", protected(s.SetDBHandler))

	// Collections
	for _, res := range s.resources() {
		mux.HandleFunc("GET /api/"+res.path, protected(s.listHandler(res)))
		mux.HandleFunc("POST /api/"+res.path, protected(s.createHandler(res)))
		mux.HandleFunc("PUT /api/"+res.path+"/{id}", protected(s.updateHandler(res)))
		mux.HandleFunc("DELETE /api/"+res.path+"/{id}", protected(s.deleteHandler(res)))
	}
	mux.HandleFunc("GET /api/categories", protected(s.ListCategoriesHandler))
	mux.HandleFunc("POST /api/categories", protected(s.AddCategoryHandler))
	mux.HandleFunc("PUT /api/categories/{name}", protected(s.RenameCategoryHandler))

	// Derived views
	mux.HandleFunc("GET /api/inventory/status", protected(s.InventoryStatusHandler))
	mux.HandleFunc("GET /api/inventory/summary", protected(s.InventorySummaryHandler))
	mux.HandleFunc("GET /api/sponsors/values", protected(s.SponsorValuesHandler))
	mux.HandleFunc("GET /api/financials", protected(s.FinancialsHandler))
	mux.HandleFunc("GET /api/budget", protected(s.BudgetHandler))
	mux.HandleFunc("POST /api/pricing/ticket", protected(s.TicketPricingHandler))
	mux.HandleFunc("POST /api/pricing/deal-fee", protected(s.DealFeeHandler))
	mux.HandleFunc("POST /api/players/plan", protected(s.PlayerPlanHandler))
	mux.HandleFunc("GET /api/season-tickets/renewals", protected(s.RenewalsHandler))
}

// HealthHandler reports whether the store answers.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Store().Ping(r.Context()); err != nil {
		logger.LogHTTPError(r, http.StatusServiceUnavailable, err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// StatsHandler returns catalog statistics and collection sizes.
func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"catalog": s.state.Catalog().GetStats(),
		"collections": map[string]int{
			data.KeyInventory:           len(snap.Inventory),
			data.KeySponsors:            len(snap.Sponsors),
			data.KeyDeals:               len(snap.Deals),
			data.KeySeasonTicketHolders: len(snap.SeasonTicketHolders),
			data.KeySingleGameSales:     len(snap.SingleGameSales),
			data.KeyPlayers:             len(snap.Players),
			data.KeyGames:               len(snap.Games),
			data.KeyExpenses:            len(snap.Expenses),
			data.KeyRevenues:            len(snap.Revenues),
		},
		"time": time.Now().Format(time.RFC3339),
	})
}

// writeError maps command errors onto the standard error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, state.ErrNotFound):
		middleware.WriteAPIError(w, r, http.StatusNotFound, "not_found", "Record not found", err.Error())
	case errors.Is(err, state.ErrInvalid), errors.Is(err, data.ErrUnknownCollection):
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request", err.Error())
	case errors.Is(err, state.ErrConflict):
		middleware.WriteAPIError(w, r, http.StatusConflict, "conflict", "Record already exists", err.Error())
	case errors.Is(err, security.ErrInvalidCredentials):
		middleware.WriteAPIError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid email or password", "")
	default:
		logger.LogHTTPError(r, http.StatusInternalServerError, err)
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "storage_error", "Failed to save changes", "")
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request", err.Error())
}
