package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pixelift/internal/transaction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (id, clerk_id, plan, amount, credits, payment, order_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.ClerkID,
		txn.Plan,
		txn.Amount,
		txn.Credits,
		txn.Payment,
		txn.OrderID,
		txn.CreatedAt,
		txn.UpdatedAt,
	).Error
}

func (r *repo) SetOrderID(ctx context.Context, db *gorm.DB, id snowflake.ID, orderID string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET order_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		orderID,
		id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	var item domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, clerk_id, plan, amount, credits, payment, order_id, created_at, updated_at
		 FROM transactions
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET payment = TRUE, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND payment = FALSE`,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ListByClerkID(ctx context.Context, db *gorm.DB, clerkID string, beforeID snowflake.ID, limit int) ([]domain.Transaction, error) {
	items := make([]domain.Transaction, 0, limit)

	query := `SELECT id, clerk_id, plan, amount, credits, payment, order_id, created_at, updated_at
		 FROM transactions
		 WHERE clerk_id = ?`
	args := []interface{}{clerkID}
	if beforeID > 0 {
		query += ` AND id < ?`
		args = append(args, beforeID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	if err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
