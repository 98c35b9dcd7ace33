package clipdrop

import (
	"context"
	"errors"

	"github.com/smallbiznis/pixelift/internal/config"
	"github.com/smallbiznis/pixelift/internal/removal/domain"
	"github.com/smallbiznis/pixelift/internal/removal/service"
)

type remover struct {
	client *Client
}

// NewRemover adapts the client to the removal service interface.
func NewRemover(cfg config.Config) service.Remover {
	return &remover{client: NewClient(cfg.ClipdropAPIKey, cfg.ClipdropBaseURL)}
}

func (r *remover) RemoveBackground(ctx context.Context, fileName string, image []byte) ([]byte, string, error) {
	result, err := r.client.RemoveBackground(ctx, fileName, image)
	if err != nil {
		if errors.Is(err, ErrMissingAPIKey) {
			return nil, "", domain.ErrNotConfigured
		}
		return nil, "", err
	}
	return result.Image, result.ContentType, nil
}
