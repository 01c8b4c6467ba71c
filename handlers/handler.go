package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"portfolio/config"
	"portfolio/db"
	"portfolio/logger"
	"portfolio/templates"
)

// Deps is everything the handlers share. It is assembled once at startup.
type Deps struct {
	Store    db.Store
	Guard    *Guard
	Tokens   *FormTokens
	Sessions sessions.Store
	Views    *Renderer
	Static   fs.FS
	Log      zerolog.Logger
	// Now is consulted for the footer year.
	Now func() time.Time
	// RateLimit caps POSTs to the mutating routes per client IP, e.g.
	// "30-M". Empty disables.
	RateLimit   string
	Development bool
}

// Handler serves the site.
type Handler struct {
	store    db.Store
	guard    *Guard
	tokens   *FormTokens
	sessions sessions.Store
	views    *Renderer
	forms    *FormValidator
	log      zerolog.Logger
	now      func() time.Time
}

// New checks d and builds a Handler.
func New(d Deps) (*Handler, error) {
	switch {
	case d.Store == nil:
		return nil, errors.New("store is required")
	case d.Guard == nil:
		return nil, errors.New("guard is required")
	case d.Tokens == nil:
		return nil, errors.New("form tokens are required")
	case d.Sessions == nil:
		return nil, errors.New("session store is required")
	case d.Views == nil:
		return nil, errors.New("views are required")
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		store:    d.Store,
		guard:    d.Guard,
		tokens:   d.Tokens,
		sessions: d.Sessions,
		views:    d.Views,
		forms:    NewFormValidator(),
		log:      d.Log,
		now:      now,
	}, nil
}

// FromConfig wires the default dependencies for cfg around store.
func FromConfig(cfg *config.Config, store db.Store, log zerolog.Logger) (Deps, error) {
	guard, err := NewGuard(cfg.PasswordHash)
	if err != nil {
		return Deps{}, fmt.Errorf("PASSWORD: %w", err)
	}
	views, err := NewRenderer(templates.FS)
	if err != nil {
		return Deps{}, err
	}
	static, err := fs.Sub(templates.FS, "static")
	if err != nil {
		return Deps{}, err
	}
	return Deps{
		Store:       store,
		Guard:       guard,
		Tokens:      NewFormTokens(cfg.SecretKey, time.Hour, nil),
		Sessions:    NewSessionStore(cfg.SecretKey, !cfg.Development()),
		Views:       views,
		Static:      static,
		Log:         log,
		RateLimit:   cfg.RateLimit,
		Development: cfg.Development(),
	}, nil
}

// NewRouter builds the routes over d.
func NewRouter(d Deps) (http.Handler, error) {
	h, err := New(d)
	if err != nil {
		return nil, err
	}
	limit, err := LimitPosts(d.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}

	r := mux.NewRouter()
	r.Use(logger.Middleware(d.Log), NewSecure(d.Development))

	if d.Static != nil {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))),
		)
	}

	// Public pages
	r.HandleFunc("/", h.Home).Methods("GET")
	r.HandleFunc("/projects", h.ProjectsPage).Methods("GET")
	r.HandleFunc("/about", h.About).Methods("GET")

	// Password-gated forms
	r.Handle("/add", limit(http.HandlerFunc(h.Add))).Methods("GET", "POST")
	r.Handle("/edit/{id:[0-9]+}", limit(http.HandlerFunc(h.Edit))).Methods("GET", "POST")
	r.Handle("/delete/{id:[0-9]+}", limit(http.HandlerFunc(h.Delete))).Methods("GET", "POST")

	return r, nil
}
