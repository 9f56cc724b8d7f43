package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"frontoffice/internal/data"
	"frontoffice/internal/logger"
	"frontoffice/internal/middleware"
	"frontoffice/internal/state"
)

// resource binds a URL path to one collection's commands. The body handling is
// typed per collection by newResource.
type resource struct {
	path   string
	key    string
	create func(ctx context.Context, body []byte) (interface{}, error)
	update func(ctx context.Context, id string, body []byte) (interface{}, error)
	remove func(ctx context.Context, id string) error
}

func newResource[T any](path, key string,
	add func(context.Context, T) (T, error),
	upd func(context.Context, string, func(*T) error) (T, error),
	del func(context.Context, string) error,
) resource {
	return resource{
		path: path,
		key:  key,
		create: func(ctx context.Context, body []byte) (interface{}, error) {
			var item T
			if err := json.Unmarshal(body, &item); err != nil {
				return nil, fmt.Errorf("%w: %v", state.ErrInvalid, err)
			}
			created, err := add(ctx, item)
			return created, err
		},
		// The body is decoded over the stored record, so absent fields keep
		// their values.
		update: func(ctx context.Context, id string, body []byte) (interface{}, error) {
			updated, err := upd(ctx, id, func(item *T) error {
				return json.Unmarshal(body, item)
			})
			return updated, err
		},
		remove: del,
	}
}

func (s *Server) resources() []resource {
	st := s.state
	return []resource{
		newResource("inventory", data.KeyInventory, st.AddInventory, st.UpdateInventory, st.DeleteInventory),
		newResource("sponsors", data.KeySponsors, st.AddSponsor, st.UpdateSponsor, st.DeleteSponsor),
		newResource("deals", data.KeyDeals, st.AddDeal, st.UpdateDeal, st.DeleteDeal),
		newResource("games", data.KeyGames, st.AddGame, st.UpdateGame, st.DeleteGame),
		newResource("staff", data.KeyStaff, st.AddStaff, st.UpdateStaff, st.DeleteStaff),
		newResource("timeline", data.KeyTimeline, st.AddTimelineItem, st.UpdateTimelineItem, st.DeleteTimelineItem),
		newResource("season-tickets", data.KeySeasonTicketHolders, st.AddSeasonTicketHolder, st.UpdateSeasonTicketHolder, st.DeleteSeasonTicketHolder),
		newResource("single-game-sales", data.KeySingleGameSales, st.AddSingleGameSale, st.UpdateSingleGameSale, st.DeleteSingleGameSale),
		newResource("players", data.KeyPlayers, st.AddPlayer, st.UpdatePlayer, st.DeletePlayer),
		newResource("expenses", data.KeyExpenses, st.AddExpense, st.UpdateExpense, st.DeleteExpense),
		newResource("revenues", data.KeyRevenues, st.AddRevenue, st.UpdateRevenue, st.DeleteRevenue),
	}
}

func (s *Server) listHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := s.state.Snapshot().Raw(res.key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		middleware.WriteAPISuccess(w, r, raw)
	}
}

func (s *Server) createHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := middleware.ReadJSONBody(r)
		if err != nil {
			badRequest(w, r, err)
			return
		}

		created, err := res.create(r.Context(), body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger.LogInfo("Created record in %s", res.key)
		middleware.WriteAPIStatus(w, r, http.StatusCreated, created)
	}
}

func (s *Server) updateHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		body, err := middleware.ReadJSONBody(r)
		if err != nil {
			badRequest(w, r, err)
			return
		}

		updated, err := res.update(r.Context(), id, body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		logger.LogInfo("Updated %s record %s", res.key, id)
		middleware.WriteAPISuccess(w, r, updated)
	}
}

func (s *Server) deleteHandler(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := res.remove(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		logger.LogInfo("Deleted %s record %s", res.key, id)
		middleware.WriteAPISuccess(w, r, map[string]string{"id": id})
	}
}

// =============================================================================
// CATEGORIES
// =============================================================================

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	middleware.WriteAPISuccess(w, r, s.state.Categories())
}

func (s *Server) AddCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.state.AddCategory(r.Context(), req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteAPIStatus(w, r, http.StatusCreated, s.state.Categories())
}

// RenameCategoryHandler renames {name} to the body's name, moving its items.
func (s *Server) RenameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	from := r.PathValue("name")
	if err := s.state.RenameCategory(r.Context(), from, req.Name); err != nil {
		writeError(w, r, err)
		return
	}
	logger.LogInfo("Renamed category %q to %q", from, strings.TrimSpace(req.Name))
	middleware.WriteAPISuccess(w, r, s.state.Categories())
}
