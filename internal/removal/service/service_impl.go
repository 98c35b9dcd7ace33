package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/pixelift/internal/removal/domain"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Remover is the slice of the upstream client the service needs.
type Remover interface {
	RemoveBackground(ctx context.Context, fileName string, image []byte) (imageOut []byte, contentType string, err error)
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Remover Remover
	UserSvc userdomain.Service
}

type Service struct {
	log     *zap.Logger
	remover Remover
	userSvc userdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("removal.service"),
		remover: p.Remover,
		userSvc: p.UserSvc,
	}
}

func (s *Service) RemoveBackground(ctx context.Context, req domain.RemoveBackgroundRequest) (domain.RemoveBackgroundResult, error) {
	clerkID := strings.TrimSpace(req.ClerkID)
	if clerkID == "" {
		return domain.RemoveBackgroundResult{}, userdomain.ErrInvalidClerkID
	}
	if len(req.Image) == 0 {
		return domain.RemoveBackgroundResult{}, domain.ErrInvalidImage
	}

	// The balance check happens before the upstream call so out-of-credit
	// users never consume upstream quota. The debit itself stays
	// conditional, so a concurrent burst cannot push the balance negative.
	balance, err := s.userSvc.Credits(ctx, clerkID)
	if err != nil {
		return domain.RemoveBackgroundResult{}, err
	}
	if balance <= 0 {
		return domain.RemoveBackgroundResult{Balance: balance}, userdomain.ErrInsufficientCredits
	}

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = "upload"
	}

	image, contentType, err := s.remover.RemoveBackground(ctx, fileName, req.Image)
	if err != nil {
		s.log.Error("background removal failed",
			zap.String("clerk_id", clerkID),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrNotConfigured) {
			return domain.RemoveBackgroundResult{}, err
		}
		return domain.RemoveBackgroundResult{}, errors.Join(domain.ErrUpstream, err)
	}

	if err := s.userSvc.DebitCredit(ctx, clerkID); err != nil {
		if errors.Is(err, userdomain.ErrInsufficientCredits) {
			// The balance raced to zero between the check and the debit.
			return domain.RemoveBackgroundResult{Balance: 0}, err
		}
		return domain.RemoveBackgroundResult{}, err
	}

	balance, err = s.userSvc.Credits(ctx, clerkID)
	if err != nil {
		return domain.RemoveBackgroundResult{}, err
	}

	if contentType == "" {
		contentType = "image/png"
	}

	return domain.RemoveBackgroundResult{
		ResultImage: fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image)),
		Balance:     balance,
	}, nil
}
