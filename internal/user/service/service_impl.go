package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pixelift/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	clerkID := strings.TrimSpace(req.ClerkID)
	if clerkID == "" {
		return domain.User{}, domain.ErrInvalidClerkID
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:            s.genID.Generate(),
		ClerkID:       clerkID,
		Email:         email,
		Username:      username,
		Photo:         strings.TrimSpace(req.Photo),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		CreditBalance: domain.DefaultCreditBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	inserted, err := s.repo.Insert(ctx, s.db, &user)
	if err != nil {
		return domain.User{}, err
	}
	if !inserted {
		// Redelivered provisioning event; the stored record wins.
		existing, err := s.repo.FindByClerkID(ctx, s.db, clerkID)
		if err != nil {
			return domain.User{}, err
		}
		if existing == nil {
			return domain.User{}, domain.ErrUserExists
		}
		return *existing, nil
	}

	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error {
	clerkID := strings.TrimSpace(req.ClerkID)
	if clerkID == "" {
		return domain.ErrInvalidClerkID
	}

	user := domain.User{
		ClerkID:   clerkID,
		Email:     strings.TrimSpace(req.Email),
		Username:  strings.TrimSpace(req.Username),
		Photo:     strings.TrimSpace(req.Photo),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		UpdatedAt: time.Now().UTC(),
	}
	return s.repo.UpdateProfile(ctx, s.db, &user)
}

func (s *Service) Delete(ctx context.Context, clerkID string) error {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return domain.ErrInvalidClerkID
	}
	// Deleting an unknown account is a no-op, matching provider redelivery.
	return s.repo.Delete(ctx, s.db, clerkID)
}

func (s *Service) GetByClerkID(ctx context.Context, clerkID string) (domain.User, error) {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return domain.User{}, domain.ErrInvalidClerkID
	}

	user, err := s.repo.FindByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) Credits(ctx context.Context, clerkID string) (int64, error) {
	user, err := s.GetByClerkID(ctx, clerkID)
	if err != nil {
		return 0, err
	}
	return user.CreditBalance, nil
}

func (s *Service) AddCredits(ctx context.Context, clerkID string, credits int64) error {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return domain.ErrInvalidClerkID
	}
	if credits <= 0 {
		return domain.ErrInvalidCredits
	}

	updated, err := s.repo.AddCredits(ctx, s.db, clerkID, credits)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) DebitCredit(ctx context.Context, clerkID string) error {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return domain.ErrInvalidClerkID
	}

	debited, err := s.repo.DebitCredit(ctx, s.db, clerkID)
	if err != nil {
		return err
	}
	if !debited {
		return domain.ErrInsufficientCredits
	}
	return nil
}
