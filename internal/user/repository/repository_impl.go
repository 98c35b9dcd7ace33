package repository

import (
	"context"

	"github.com/smallbiznis/pixelift/internal/user/domain"
	pkgdb "github.com/smallbiznis/pixelift/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO users (id, clerk_id, email, username, photo, first_name, last_name, credit_balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (clerk_id) DO NOTHING`,
		user.ID,
		user.ClerkID,
		user.Email,
		user.Username,
		user.Photo,
		user.FirstName,
		user.LastName,
		user.CreditBalance,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if res.Error != nil {
		// ON CONFLICT only covers clerk_id; the unique email index can
		// still fire on a conflicting insert.
		if pkgdb.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByClerkID(ctx context.Context, db *gorm.DB, clerkID string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT id, clerk_id, email, username, photo, first_name, last_name, credit_balance, created_at, updated_at
		 FROM users WHERE clerk_id = ?`,
		clerkID,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) UpdateProfile(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users
		 SET email = ?, username = ?, photo = ?, first_name = ?, last_name = ?, updated_at = ?
		 WHERE clerk_id = ?`,
		user.Email,
		user.Username,
		user.Photo,
		user.FirstName,
		user.LastName,
		user.UpdatedAt,
		user.ClerkID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, clerkID string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM users WHERE clerk_id = ?`,
		clerkID,
	).Error
}

func (r *repo) AddCredits(ctx context.Context, db *gorm.DB, clerkID string, credits int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE users
		 SET credit_balance = credit_balance + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE clerk_id = ?`,
		credits,
		clerkID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DebitCredit is the conditional decrement guarding against concurrent
// requests driving the balance negative.
func (r *repo) DebitCredit(ctx context.Context, db *gorm.DB, clerkID string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE users
		 SET credit_balance = credit_balance - 1, updated_at = CURRENT_TIMESTAMP
		 WHERE clerk_id = ? AND credit_balance > 0`,
		clerkID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
