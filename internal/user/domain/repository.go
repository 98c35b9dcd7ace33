package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) (bool, error)
	FindByClerkID(ctx context.Context, db *gorm.DB, clerkID string) (*User, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, clerkID string) error
	AddCredits(ctx context.Context, db *gorm.DB, clerkID string, credits int64) (bool, error)
	DebitCredit(ctx context.Context, db *gorm.DB, clerkID string) (bool, error)
}
