package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	steepshot "github.com/dvcrn/steepshot-go"
	"github.com/dvcrn/steepshot-go/internal/session"
)

// worker serves listings through the client. A nil client answers 503 and a
// nil store makes every call anonymous.
type worker struct {
	client *steepshot.Client
	store  session.Store
	log    zerolog.Logger
}

func (wk *worker) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /top", wk.topHandler)
	mux.HandleFunc("GET /feed", wk.feedHandler)
	return mux
}

func (wk *worker) sessionID() string {
	if wk.store == nil {
		return ""
	}
	s, err := wk.store.Load()
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			wk.log.Warn().Err(err).Str("store", wk.store.Name()).Msg("Failed to load session")
		}
		return ""
	}
	return s.ID
}

// writeJSON answers 502 when the upstream call failed.
func writeJSON(w http.ResponseWriter, ok bool, v any) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadGateway)
	}
	_ = json.NewEncoder(w).Encode(v)
}

func page(r *http.Request) steepshot.Page {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return steepshot.Page{Offset: r.URL.Query().Get("offset"), Limit: limit}
}

func (wk *worker) ready(w http.ResponseWriter) bool {
	if wk.client == nil {
		http.Error(w, "client not configured: set STEEPSHOT_BASE_URL", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (wk *worker) topHandler(w http.ResponseWriter, r *http.Request) {
	if !wk.ready(w) {
		return
	}
	req, err := steepshot.NewTopPostsRequest(wk.sessionID(), page(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res := wk.client.GetTopPosts(r.Context(), req)
	writeJSON(w, res.Success, res)
}

func (wk *worker) feedHandler(w http.ResponseWriter, r *http.Request) {
	if !wk.ready(w) {
		return
	}
	id := wk.sessionID()
	postsReq, err := steepshot.NewTopPostsRequest(id, page(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	catReq, err := steepshot.NewCategoriesRequest(id, page(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		posts      *steepshot.Result[steepshot.PostsResponse]
		categories *steepshot.Result[steepshot.CategoriesResponse]
		g          errgroup.Group
	)
	g.Go(func() error {
		posts = wk.client.GetTopPosts(r.Context(), postsReq)
		return nil
	})
	g.Go(func() error {
		categories = wk.client.GetCategories(r.Context(), catReq)
		return nil
	})
	_ = g.Wait()

	writeJSON(w, posts.Success && categories.Success, map[string]any{"posts": posts, "categories": categories})
}
