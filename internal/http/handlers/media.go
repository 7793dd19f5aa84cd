package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Preview serves the bytes behind a preview handle until it is revoked.
func (a *App) Preview(w http.ResponseWriter, r *http.Request) {
	entry, ok := a.Previews.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "preview not found")
		return
	}
	w.Header().Set("Content-Type", entry.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(entry.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(entry.Data)
}

// Result serves the generated image inline ("open full size").
func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r, false)
}

// DownloadResult serves the generated image as pixelmorph-<unix-ms>.png.
func (a *App) DownloadResult(w http.ResponseWriter, r *http.Request) {
	a.writeResult(w, r, true)
}

// DownloadFilename returns the attachment name for a download at ms.
func DownloadFilename(ms int64) string {
	return fmt.Sprintf("pixelmorph-%d.png", ms)
}

func (a *App) writeResult(w http.ResponseWriter, r *http.Request, attachment bool) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	res := sess.Result()
	if res == nil {
		a.error(w, http.StatusNotFound, "not_found", "no generated image")
		return
	}
	data, err := res.PNGBytes()
	if err != nil {
		a.Logger.Error().Err(err).Str("session_id", sess.ID()).Msg("decode result")
		a.error(w, http.StatusInternalServerError, "internal", "failed to decode result")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, no-store")
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", DownloadFilename(a.Now().UnixMilli())))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
