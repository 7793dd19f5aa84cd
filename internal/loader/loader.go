// Package loader turns an uploaded file into a domain.ImageAsset.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"pixelmorph/internal/domain"
	"pixelmorph/internal/preview"
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes int64 = 20 << 20

// File is the platform file handle the loader consumes.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromMultipart adapts a multipart upload already opened by the caller, who
// keeps ownership of f and closes it.
func FromMultipart(f multipart.File, fh *multipart.FileHeader) File {
	return File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return io.NopCloser(f), nil
		},
	}
}

// Loader validates, reads, and encodes selected images.
type Loader struct {
	previews *preview.Registry
	maxBytes int64
	logger   zerolog.Logger
}

// New returns a Loader that registers previews in reg.
func New(reg *preview.Registry, maxBytes int64, logger zerolog.Logger) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		previews: reg,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "loader").Logger(),
	}
}

// IsImage reports whether a declared content type is accepted.
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// Validate checks the declared metadata of f without reading it.
func (l *Loader) Validate(f File) error {
	contentType := strings.TrimSpace(f.ContentType)
	if !IsImage(contentType) {
		l.logger.Debug().Str("filename", f.Filename).Str("content_type", contentType).Msg("rejecting non-image upload")
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedMedia, contentType)
	}
	if f.Size > l.maxBytes {
		return fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, f.Size)
	}
	return nil
}

// Load reads f and returns a complete asset. The preview handle is
// registered only once the encoding has finished.
func (l *Loader) Load(ctx context.Context, f File) (*domain.ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.Validate(f); err != nil {
		return nil, err
	}
	contentType := strings.TrimSpace(f.ContentType)
	if f.Open == nil {
		return nil, errors.New("loader: file has no reader")
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("loader: open file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("loader: read file: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: over %d bytes", domain.ErrFileTooLarge, l.maxBytes)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asset := domain.NewImageAsset(f.Filename, strings.ToLower(contentType), data)
	if l.previews != nil {
		asset.PreviewID, asset.PreviewURL = l.previews.Put(asset.MIMEType, data)
	}

	l.logger.Debug().
		Str("filename", asset.Filename).
		Str("mime", asset.MIMEType).
		Int64("bytes", asset.Size).
		Msg("image loaded")

	return asset, nil
}
