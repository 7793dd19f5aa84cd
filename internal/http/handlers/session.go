package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pixelmorph/internal/domain"
	"pixelmorph/internal/loader"
	"pixelmorph/internal/middleware"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// State returns the session snapshot.
func (a *App) State(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	a.json(w, http.StatusOK, sess.Snapshot())
}

// UploadImage accepts the multipart field "image". Both the file picker and
// drag-and-drop post here.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxBytes+(1<<20))
	mf, fh, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds the upload limit")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "image file is required")
		return
	}
	defer mf.Close()
	file := loader.FromMultipart(mf, fh)
	if err := a.Loader.Validate(file); err != nil {
		a.loadError(w, r, err)
		return
	}

	sess.BeginUpload()
	asset, err := a.Loader.Load(r.Context(), file)
	if err != nil {
		sess.AbortUpload()
		a.loadError(w, r, err)
		return
	}
	sess.Select(asset)
	a.json(w, http.StatusOK, sess.Snapshot())
}

func (a *App) loadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMedia):
		a.error(w, http.StatusUnsupportedMediaType, "unsupported_media", "only image files are accepted")
	case errors.Is(err, domain.ErrFileTooLarge):
		a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds the upload limit")
	case errors.Is(err, domain.ErrEmptyFile):
		a.error(w, http.StatusBadRequest, "bad_request", "image file is empty")
	case errors.Is(err, context.Canceled):
		a.error(w, http.StatusBadRequest, "canceled", "upload canceled")
	default:
		a.Logger.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Msg("load image")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read image")
	}
}

// UpdatePrompt stores the prompt text.
func (a *App) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sess.SetPrompt(req.Prompt)
	a.json(w, http.StatusOK, sess.Snapshot())
}

// Generate starts a generation. The call to Gemini outlives the request.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	if _, ok := sess.StartGeneration(context.WithoutCancel(r.Context())); !ok {
		if sess.Closed() {
			a.error(w, http.StatusGone, "session_closed", domain.ErrSessionClosed.Error())
			return
		}
		snap := sess.Snapshot()
		if snap.Image == nil {
			a.error(w, http.StatusConflict, "no_image", domain.ErrNoImage.Error())
			return
		}
		a.error(w, http.StatusConflict, "busy", domain.ErrBusy.Error())
		return
	}
	a.json(w, http.StatusAccepted, sess.Snapshot())
}

// EndSession closes the session and releases its previews.
func (a *App) EndSession(w http.ResponseWriter, r *http.Request) {
	sess := a.session(w, r)
	if sess == nil {
		return
	}
	a.Store.Delete(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}
