// Package clipdrop calls the ClipDrop remove-background endpoint.
package clipdrop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://clipdrop-api.co"
	removePath     = "/remove-background/v1"
)

var ErrMissingAPIKey = errors.New("clipdrop_api_key_missing")

// APIError is returned for any non-2xx upstream response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clipdrop: %d: %s", e.StatusCode, e.Body)
}

type Result struct {
	Image       []byte
	ContentType string
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient never fails: a missing API key surfaces per request from
// RemoveBackground, so the process still boots without one.
func NewClient(apiKey, baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

// RemoveBackground uploads the image as the image_file multipart field
// and returns the processed bytes.
func (c *Client) RemoveBackground(ctx context.Context, fileName string, image []byte) (*Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image_file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+removePath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return &Result{Image: data, ContentType: contentType}, nil
}
