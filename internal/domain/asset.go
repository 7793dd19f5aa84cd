package domain

import (
	"encoding/base64"
	"time"
)

// ImageAsset is the source image selected for editing together with its
// encodings. It is built once by the loader and never mutated afterwards.
type ImageAsset struct {
	Filename   string
	MIMEType   string
	Size       int64
	Data       []byte
	Base64     string
	PreviewID  string
	PreviewURL string
}

// NewImageAsset encodes data and returns an asset without a preview handle.
func NewImageAsset(filename, mimeType string, data []byte) *ImageAsset {
	return &ImageAsset{
		Filename: filename,
		MIMEType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}
}

// GenerationResult is the edited image returned for the current request.
type GenerationResult struct {
	DataURL   string
	Prompt    string
	CreatedAt time.Time
}

// PNGDataURLPrefix is the prefix every GenerationResult.DataURL carries.
const PNGDataURLPrefix = "data:image/png;base64,"

// PNGBytes decodes the result payload.
func (r *GenerationResult) PNGBytes() ([]byte, error) {
	if r == nil {
		return nil, ErrNoResult
	}
	payload := r.DataURL
	if len(payload) >= len(PNGDataURLPrefix) && payload[:len(PNGDataURLPrefix)] == PNGDataURLPrefix {
		payload = payload[len(PNGDataURLPrefix):]
	}
	return base64.StdEncoding.DecodeString(payload)
}
