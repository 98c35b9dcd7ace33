package domain

import (
	"context"
	"errors"
)

type CreateOrderRequest struct {
	ClerkID string
	PlanID  string
}

// CheckoutOrder is what the client needs to open the gateway checkout.
type CheckoutOrder struct {
	TransactionID string `json:"transactionId"`
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Plan          string `json:"plan"`
	Credits       int64  `json:"credits"`
}

type VerifyPaymentRequest struct {
	ClerkID   string
	OrderID   string
	PaymentID string
	Signature string
}

type VerifyPaymentResult struct {
	Credited bool  `json:"credited"`
	Credits  int64 `json:"credits"`
	Balance  int64 `json:"balance"`
}

type Service interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (CheckoutOrder, error)
	VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (VerifyPaymentResult, error)
	ListByClerkID(ctx context.Context, clerkID string, cursor string, limit int) ([]Transaction, string, error)
}

var (
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrTransactionNotFound = errors.New("transaction_not_found")
	ErrSignatureMismatch   = errors.New("signature_mismatch")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrOrderNotPaid        = errors.New("order_not_paid")
)
