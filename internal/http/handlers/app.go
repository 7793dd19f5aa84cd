package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pixelmorph/internal/loader"
	"pixelmorph/internal/middleware"
	"pixelmorph/internal/preview"
	"pixelmorph/internal/studio"
)

// App carries the dependencies shared by the HTTP handlers.
type App struct {
	Store    *studio.Store
	Loader   *loader.Loader
	Previews *preview.Registry
	Pages    *template.Template
	Logger   zerolog.Logger
	MaxBytes int64
	Now      func() time.Time
}

// NewApp wires an App. now defaults to time.Now.
func NewApp(store *studio.Store, ld *loader.Loader, previews *preview.Registry, pages *template.Template, maxBytes int64, logger zerolog.Logger) *App {
	return &App{
		Store:    store,
		Loader:   ld,
		Previews: previews,
		Pages:    pages,
		Logger:   logger.With().Str("component", "http").Logger(),
		MaxBytes: maxBytes,
		Now:      time.Now,
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

func (a *App) session(w http.ResponseWriter, r *http.Request) *studio.Session {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		a.error(w, http.StatusInternalServerError, "internal", "missing session context")
	}
	return sess
}
