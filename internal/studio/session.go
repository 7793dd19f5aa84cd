// Package studio owns the editing state behind one browser: the selected
// image, the prompt, and the lifecycle of the current generation.
package studio

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"pixelmorph/internal/domain"
	"pixelmorph/internal/imagegen"
)

// Generator edits an image according to a prompt and returns a PNG data URL.
type Generator interface {
	Generate(ctx context.Context, base64Image, mimeType, prompt string) (string, error)
}

// Releaser frees preview handles.
type Releaser interface {
	Revoke(id string) bool
}

// Snapshot is an immutable view of a session for rendering.
type Snapshot struct {
	ID           string                   `json:"id"`
	State        domain.LifecycleState    `json:"state"`
	Image        *ImageView               `json:"image,omitempty"`
	Prompt       string                   `json:"prompt"`
	PromptLength int                      `json:"prompt_length"`
	Result       *domain.GenerationResult `json:"-"`
	HasResult    bool                     `json:"has_result"`
	Error        string                   `json:"error,omitempty"`
	CanGenerate  bool                     `json:"can_generate"`
	Sequence     uint64                   `json:"sequence"`
}

// ImageView is the part of the selected asset exposed to the page.
type ImageView struct {
	Filename   string `json:"filename"`
	MIMEType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	PreviewURL string `json:"preview_url"`
}

// Session is the state controller for one editor. All methods are safe for
// concurrent use.
type Session struct {
	id        string
	generator Generator
	previews  Releaser
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    domain.LifecycleState
	image    *domain.ImageAsset
	prompt   string
	result   *domain.GenerationResult
	errMsg   string
	resume   domain.LifecycleState
	seq      uint64
	lastSeen time.Time
	closed   bool
}

func newSession(id string, gen Generator, previews Releaser, logger zerolog.Logger, now func() time.Time) *Session {
	return &Session{
		id:        id,
		generator: gen,
		previews:  previews,
		logger:    logger.With().Str("session_id", id).Logger(),
		now:       now,
		state:     domain.StateIdle,
		resume:    domain.StateIdle,
		lastSeen:  now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// BeginUpload marks a file read as in progress. The image, result, error and
// any in-flight generation are left alone until Select replaces the image.
func (s *Session) BeginUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.closed {
		return
	}
	if s.state != domain.StateUploading {
		s.resume = s.state
	}
	s.state = domain.StateUploading
}

// AbortUpload restores the state held before BeginUpload when a read failed.
func (s *Session) AbortUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateUploading {
		s.state = s.resume
	}
}

// Select replaces the current image, releasing the previous preview handle,
// and returns to idle with no result and no error.
func (s *Session) Select(asset *domain.ImageAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.closed {
		s.release(asset)
		return
	}
	if s.image != nil && (asset == nil || s.image.PreviewID != asset.PreviewID) {
		s.release(s.image)
	}
	s.seq++
	s.image = asset
	s.state = domain.StateIdle
	s.resume = domain.StateIdle
	s.result = nil
	s.errMsg = ""
}

// SetPrompt stores the instruction text.
func (s *Session) SetPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.prompt = text
}

// StartGeneration moves to generating and runs the generator in the
// background. It is a no-op returning false when no image is selected or a
// read or generation is already running. The returned channel is closed once
// the outcome has been applied or discarded as stale.
func (s *Session) StartGeneration(ctx context.Context) (<-chan struct{}, bool) {
	s.mu.Lock()
	s.touch()
	if s.closed || s.image == nil || s.state.Busy() {
		s.mu.Unlock()
		return nil, false
	}
	s.seq++
	seq := s.seq
	image := s.image
	prompt := s.prompt
	s.state = domain.StateGenerating
	s.result = nil
	s.errMsg = ""
	s.mu.Unlock()

	s.logger.Info().Uint64("sequence", seq).Str("mime", image.MIMEType).Msg("generation started")

	done := make(chan struct{})
	go func() {
		defer close(done)
		url, err := s.generator.Generate(ctx, image.Base64, image.MIMEType, prompt)
		s.complete(seq, prompt, url, err)
	}()
	return done, true
}

// Generate runs a generation and waits for its outcome.
func (s *Session) Generate(ctx context.Context) bool {
	done, ok := s.StartGeneration(ctx)
	if !ok {
		return false
	}
	<-done
	return true
}

func (s *Session) complete(seq uint64, prompt, url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq || !s.generatingLocked() {
		s.logger.Debug().Uint64("sequence", seq).Uint64("current", s.seq).Msg("discarding stale generation outcome")
		return
	}
	// An upload in progress keeps its marker; the outcome lands in the state
	// AbortUpload will restore.
	target := &s.state
	if s.state == domain.StateUploading {
		target = &s.resume
	}
	if err != nil {
		*target = domain.StateError
		s.errMsg = imagegen.Message(err)
		s.logger.Warn().Uint64("sequence", seq).Str("error", s.errMsg).Msg("generation failed")
		return
	}
	*target = domain.StateSuccess
	s.result = &domain.GenerationResult{DataURL: url, Prompt: prompt, CreatedAt: s.now()}
	s.logger.Info().Uint64("sequence", seq).Msg("generation succeeded")
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:           s.id,
		State:        s.state,
		Prompt:       s.prompt,
		PromptLength: PromptLength(s.prompt),
		Result:       s.result,
		HasResult:    s.result != nil,
		Error:        s.errMsg,
		CanGenerate:  s.image != nil && !s.state.Busy() && !s.closed,
		Sequence:     s.seq,
	}
	if s.image != nil {
		snap.Image = &ImageView{
			Filename:   s.image.Filename,
			MIMEType:   s.image.MIMEType,
			Size:       s.image.Size,
			PreviewURL: s.image.PreviewURL,
		}
	}
	return snap
}

// Result returns the current generation result, if any.
func (s *Session) Result() *domain.GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Close releases the preview handle and drops all state. Outcomes arriving
// afterwards are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.seq++
	s.release(s.image)
	s.image = nil
	s.result = nil
	s.errMsg = ""
	s.state = domain.StateIdle
	s.resume = domain.StateIdle
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen, s.generatingLocked()
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) generatingLocked() bool {
	return s.state == domain.StateGenerating ||
		(s.state == domain.StateUploading && s.resume == domain.StateGenerating)
}

func (s *Session) touch() {
	s.lastSeen = s.now()
}

func (s *Session) release(asset *domain.ImageAsset) {
	if asset == nil || asset.PreviewID == "" || s.previews == nil {
		return
	}
	s.previews.Revoke(asset.PreviewID)
}

// PromptLength counts characters of the NFC-normalised prompt.
func PromptLength(prompt string) int {
	return utf8.RuneCountInString(norm.NFC.String(prompt))
}
