package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pixelift/internal/plan"
	"github.com/smallbiznis/pixelift/internal/transaction/domain"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
	"github.com/smallbiznis/pixelift/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	UserRepo userdomain.Repository
	Gateway  domain.Gateway
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	userRepo userdomain.Repository
	gateway  domain.Gateway
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("transaction.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		userRepo: p.UserRepo,
		gateway:  p.Gateway,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.CheckoutOrder, error) {
	clerkID := strings.TrimSpace(req.ClerkID)
	if clerkID == "" {
		return domain.CheckoutOrder{}, domain.ErrInvalidRequest
	}

	selected, err := plan.Lookup(req.PlanID)
	if err != nil {
		return domain.CheckoutOrder{}, err
	}

	user, err := s.userRepo.FindByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return domain.CheckoutOrder{}, err
	}
	if user == nil {
		return domain.CheckoutOrder{}, userdomain.ErrNotFound
	}

	// The unpaid row goes in before the gateway call so the receipt
	// always resolves to a stored transaction. A gateway failure leaves
	// an unpaid row behind, which settlement simply never touches.
	txn := domain.Transaction{
		ID:        s.genID.Generate(),
		ClerkID:   clerkID,
		Plan:      selected.ID,
		Amount:    selected.Amount,
		Credits:   selected.Credits,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &txn); err != nil {
		return domain.CheckoutOrder{}, err
	}

	orderID, err := s.gateway.CreateOrder(ctx, selected.Amount, selected.Currency, txn.ID.String(), map[string]string{
		"clerk_id": clerkID,
		"plan":     selected.ID,
	})
	if err != nil {
		s.log.Error("gateway order creation failed",
			zap.String("clerk_id", clerkID),
			zap.String("plan", selected.ID),
			zap.Error(err),
		)
		return domain.CheckoutOrder{}, err
	}
	txn.OrderID = orderID

	if err := s.repo.SetOrderID(ctx, s.db, txn.ID, orderID); err != nil {
		return domain.CheckoutOrder{}, err
	}

	s.log.Info("checkout order created",
		zap.String("clerk_id", clerkID),
		zap.String("plan", selected.ID),
		zap.String("order_id", orderID),
	)

	return domain.CheckoutOrder{
		TransactionID: txn.ID.String(),
		OrderID:       orderID,
		Amount:        selected.Amount,
		Currency:      selected.Currency,
		Plan:          selected.ID,
		Credits:       selected.Credits,
	}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, req domain.VerifyPaymentRequest) (domain.VerifyPaymentResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	paymentID := strings.TrimSpace(req.PaymentID)
	signature := strings.TrimSpace(req.Signature)
	if orderID == "" || paymentID == "" || signature == "" {
		return domain.VerifyPaymentResult{}, domain.ErrInvalidRequest
	}

	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		s.log.Warn("payment signature mismatch", zap.String("order_id", orderID))
		return domain.VerifyPaymentResult{}, domain.ErrSignatureMismatch
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return domain.VerifyPaymentResult{}, err
	}
	if order == nil {
		return domain.VerifyPaymentResult{}, domain.ErrOrderNotFound
	}
	if order.Status != "paid" {
		return domain.VerifyPaymentResult{}, domain.ErrOrderNotPaid
	}

	// The order receipt carries the transaction storage ID.
	txnID, err := parseID(order.Receipt)
	if err != nil {
		return domain.VerifyPaymentResult{}, domain.ErrTransactionNotFound
	}

	txn, err := s.repo.FindByID(ctx, s.db, txnID)
	if err != nil {
		return domain.VerifyPaymentResult{}, err
	}
	if txn == nil {
		return domain.VerifyPaymentResult{}, domain.ErrTransactionNotFound
	}
	if req.ClerkID != "" && txn.ClerkID != req.ClerkID {
		return domain.VerifyPaymentResult{}, domain.ErrTransactionNotFound
	}

	credited := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.repo.MarkPaid(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		if !won {
			// Someone already settled this transaction; nothing to grant.
			return nil
		}

		found, err := s.userRepo.AddCredits(ctx, tx, txn.ClerkID, txn.Credits)
		if err != nil {
			return err
		}
		if !found {
			return userdomain.ErrNotFound
		}
		credited = true
		return nil
	})
	if err != nil {
		return domain.VerifyPaymentResult{}, err
	}

	user, err := s.userRepo.FindByClerkID(ctx, s.db, txn.ClerkID)
	if err != nil {
		return domain.VerifyPaymentResult{}, err
	}
	if user == nil {
		return domain.VerifyPaymentResult{}, userdomain.ErrNotFound
	}

	if credited {
		s.log.Info("payment settled",
			zap.String("order_id", txn.OrderID),
			zap.String("clerk_id", txn.ClerkID),
			zap.Int64("credits", txn.Credits),
		)
	}

	return domain.VerifyPaymentResult{
		Credited: credited,
		Credits:  txn.Credits,
		Balance:  user.CreditBalance,
	}, nil
}

func (s *Service) ListByClerkID(ctx context.Context, clerkID string, cursor string, limit int) ([]domain.Transaction, string, error) {
	clerkID = strings.TrimSpace(clerkID)
	if clerkID == "" {
		return nil, "", domain.ErrInvalidRequest
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var beforeID snowflake.ID
	if cursor != "" {
		decoded, err := pagination.DecodeCursor(cursor)
		if err != nil {
			return nil, "", domain.ErrInvalidRequest
		}
		beforeID, err = parseID(decoded.ID)
		if err != nil {
			return nil, "", domain.ErrInvalidRequest
		}
	}

	// Fetch one extra row to know whether another page exists.
	items, err := s.repo.ListByClerkID(ctx, s.db, clerkID, beforeID, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next, err = pagination.EncodeCursor(pagination.Cursor{ID: last.ID.String()})
		if err != nil {
			return nil, "", err
		}
	}
	return items, next, nil
}

func parseID(raw string) (snowflake.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(n), nil
}
