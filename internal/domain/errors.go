package domain

import "errors"

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrFileTooLarge     = errors.New("file too large")
	ErrEmptyFile        = errors.New("empty file")
	ErrNoImage          = errors.New("no image selected")
	ErrBusy             = errors.New("generation in progress")
	ErrNoResult         = errors.New("no generated image")
	ErrSessionClosed    = errors.New("session closed")
)
