package imagegen

import "errors"

var (
	// ErrMissingCredential is returned before any network call when no API
	// key was configured.
	ErrMissingCredential = errors.New("API_KEY is not set in the environment.")
	ErrNoContent         = errors.New("No content generated")
	ErrNoImageData       = errors.New("No valid image data found in response")
)

const fallbackFailureMessage = "Failed to generate image"

// RefusalError carries the text the model returned in place of an image.
type RefusalError struct {
	Text string
}

func (e *RefusalError) Error() string {
	return "Model returned text instead of image: " + e.Text
}

// TransportError wraps a failure raised while talking to the service.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fallbackFailureMessage
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
