package domain

import (
	"context"
	"errors"
	"net/http"
)

type Service interface {
	// ProcessWebhook verifies, parses and applies a signed lifecycle
	// delivery. Redeliveries surface ErrEventAlreadyProcessed.
	ProcessWebhook(ctx context.Context, payload []byte, headers http.Header) error
}

var (
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrSecretMissing         = errors.New("webhook_secret_missing")
)
