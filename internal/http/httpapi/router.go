package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pixelmorph/internal/http/handlers"
	"pixelmorph/internal/http/web"
	"pixelmorph/internal/middleware"
)

// Options configures NewRouter.
type Options struct {
	SessionCookie string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
	r.Get("/v1/previews/{id}", app.Preview)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(app.Store, opts.SessionCookie, app.Logger))

		r.Get("/", app.Index)
		r.Get("/v1/state", app.State)
		r.Post("/v1/image", app.UploadImage)
		r.Put("/v1/prompt", app.UpdatePrompt)
		r.Post("/v1/generate", app.Generate)
		r.Get("/v1/result", app.Result)
		r.Get("/v1/result/download", app.DownloadResult)
		r.Delete("/v1/session", app.EndSession)
	})

	return r
}
