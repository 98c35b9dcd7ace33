package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error
	SetOrderID(ctx context.Context, db *gorm.DB, id snowflake.ID, orderID string) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	// MarkPaid flips payment to true only when it is still false,
	// returning whether this call won the flip.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	ListByClerkID(ctx context.Context, db *gorm.DB, clerkID string, beforeID snowflake.ID, limit int) ([]Transaction, error)
}

// GatewayOrder is the slice of the provider's order object the billing
// flow reads back. Receipt carries the transaction storage ID.
type GatewayOrder struct {
	ID      string
	Status  string
	Receipt string
	Amount  int64
}

// Gateway is the slice of the payment provider the service needs.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (orderID string, err error)
	FetchOrder(ctx context.Context, orderID string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
