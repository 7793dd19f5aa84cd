package handlers

import (
	"bytes"
	"net/http"

	"pixelmorph/internal/studio"
)

type pageView struct {
	studio.Snapshot
	Busy bool
	Year int
}

// Index renders the editor page from the session snapshot.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	snap := sess.Snapshot()
	view := pageView{Snapshot: snap, Busy: snap.State.Busy(), Year: a.Now().Year()}

	var buf bytes.Buffer
	if err := a.Pages.ExecuteTemplate(&buf, "index.html", view); err != nil {
		a.Logger.Error().Err(err).Msg("render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
