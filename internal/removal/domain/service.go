package domain

import (
	"context"
	"errors"
)

type RemoveBackgroundRequest struct {
	ClerkID  string
	FileName string
	MIMEType string
	Image    []byte
}

// RemoveBackgroundResult carries the processed image as a data URI so
// browser clients can drop it straight into an <img> src.
type RemoveBackgroundResult struct {
	ResultImage string `json:"resultImage"`
	Balance     int64  `json:"creditBalance"`
}

type Service interface {
	RemoveBackground(ctx context.Context, req RemoveBackgroundRequest) (RemoveBackgroundResult, error)
}

var (
	ErrInvalidImage  = errors.New("invalid_image")
	ErrUpstream      = errors.New("removal_upstream_failed")
	ErrNotConfigured = errors.New("removal_not_configured")
)
