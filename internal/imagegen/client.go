package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used for image-to-image edits.
	DefaultModel = "gemini-2.5-flash-image"
	// DefaultPrompt replaces an empty instruction.
	DefaultPrompt = "Enhance this image based on its visual content."
)

// ContentGenerator is the slice of the genai SDK the client relies on.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey  string
	Model   string
	Backend ContentGenerator
	Logger  zerolog.Logger
}

// Client edits images through Gemini. One Generate call issues exactly one
// request; there are no retries and no client-side timeout.
type Client struct {
	model   string
	backend ContentGenerator
	logger  zerolog.Logger
}

// NewClient constructs a client. When opts.Backend is nil and an API key is
// present, a genai client for the Gemini API is created. Without a key the
// client is still usable but every Generate call fails with
// ErrMissingCredential.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	model := strings.TrimPrefix(strings.TrimSpace(opts.Model), "models/")
	if model == "" {
		model = DefaultModel
	}

	backend := opts.Backend
	apiKey := strings.TrimSpace(opts.APIKey)
	if backend == nil && apiKey != "" {
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("imagegen: create genai client: %w", err)
		}
		backend = gc.Models
	}

	return &Client{
		model:   model,
		backend: backend,
		logger:  opts.Logger.With().Str("component", "imagegen").Str("model", model).Logger(),
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the image and prompt to Gemini and returns the first inline
// image of the response as a PNG data URL.
func (c *Client) Generate(ctx context.Context, base64Image, mimeType, prompt string) (string, error) {
	if c.backend == nil {
		return "", ErrMissingCredential
	}

	out, err := c.generate(ctx, base64Image, mimeType, prompt)
	if err != nil {
		c.logger.Error().Err(err).Str("mime", mimeType).Msg("gemini image generation failed")
		return "", err
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, base64Image, mimeType, prompt string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(StripDataURLPrefix(base64Image))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("decode image payload: %w", err)}
	}

	text := prompt
	if text == "" {
		text = DefaultPrompt
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(text),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.backend.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	return extractImage(resp)
}

// extractImage applies the response precedence: first inline image, else the
// first text part as a refusal, else a missing-data error.
func extractImage(resp *genai.GenerateContentResponse) (string, error) {
	var parts []*genai.Part
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].Content != nil {
		parts = resp.Candidates[0].Content.Parts
	}
	if len(parts) == 0 {
		return "", ErrNoContent
	}

	for _, part := range parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return "data:image/png;base64," + base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}

	for _, part := range parts {
		if part != nil && part.Text != "" {
			return "", &RefusalError{Text: part.Text}
		}
	}

	return "", ErrNoImageData
}

// Message flattens a generation failure into the single string shown to the
// user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallbackFailureMessage
}
