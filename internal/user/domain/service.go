package domain

import (
	"context"
	"errors"
)

type CreateUserRequest struct {
	ClerkID   string
	Email     string
	Username  string
	Photo     string
	FirstName string
	LastName  string
}

type UpdateProfileRequest struct {
	ClerkID   string
	Email     string
	Username  string
	Photo     string
	FirstName string
	LastName  string
}

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) error
	Delete(ctx context.Context, clerkID string) error
	GetByClerkID(ctx context.Context, clerkID string) (User, error)
	Credits(ctx context.Context, clerkID string) (int64, error)
	AddCredits(ctx context.Context, clerkID string, credits int64) error
	DebitCredit(ctx context.Context, clerkID string) error
}

var (
	ErrInvalidClerkID      = errors.New("invalid_clerk_id")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidCredits      = errors.New("invalid_credits")
	ErrNotFound            = errors.New("user_not_found")
	ErrUserExists          = errors.New("user_exists")
	ErrInsufficientCredits = errors.New("insufficient_credits")
)
