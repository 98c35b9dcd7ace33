package razorpay

import (
	"context"
	"errors"

	"github.com/smallbiznis/pixelift/internal/config"
	txndomain "github.com/smallbiznis/pixelift/internal/transaction/domain"
)

// Adapter exposes the client through the narrow gateway surface the
// billing service consumes.
type Adapter struct {
	client    *Client
	keySecret string
}

func NewAdapter(cfg config.Config) (txndomain.Gateway, error) {
	client, err := NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: client, keySecret: cfg.RazorpayKeySecret}, nil
}

func (a *Adapter) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	order, err := a.client.CreateOrder(ctx, CreateOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

func (a *Adapter) FetchOrder(ctx context.Context, orderID string) (*txndomain.GatewayOrder, error) {
	order, err := a.client.FetchOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, txndomain.ErrOrderNotFound
		}
		return nil, err
	}
	return &txndomain.GatewayOrder{
		ID:      order.ID,
		Status:  order.Status,
		Receipt: order.Receipt,
		Amount:  order.Amount,
	}, nil
}

func (a *Adapter) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(a.keySecret, orderID, paymentID, signature)
}
