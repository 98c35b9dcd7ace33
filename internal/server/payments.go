package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	txndomain "github.com/smallbiznis/pixelift/internal/transaction/domain"
)

type createPaymentRequest struct {
	PlanID string `json:"planID"`
	// Some clients send lowerCamel keys.
	PlanIDAlias string `json:"planId"`
	ClerkID     string `json:"clerkID"`
}

func (r createPaymentRequest) plan() string {
	if r.PlanID != "" {
		return r.PlanID
	}
	return r.PlanIDAlias
}

func (s *Server) CreatePaymentOrder(c *gin.Context) {
	clerkID := c.GetString(clerkIDKey)

	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, txndomain.ErrInvalidRequest)
		return
	}

	order, err := s.txnSvc.CreateOrder(c.Request.Context(), txndomain.CreateOrderRequest{
		ClerkID: clerkID,
		PlanID:  req.plan(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":       order.OrderID,
			"amount":   order.Amount,
			"currency": order.Currency,
			"receipt":  order.TransactionID,
			"plan":     order.Plan,
			"credits":  order.Credits,
		},
	})
}

type verifyPaymentRequest struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

func (s *Server) VerifyPayment(c *gin.Context) {
	clerkID := c.GetString(clerkIDKey)

	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, txndomain.ErrInvalidRequest)
		return
	}

	result, err := s.txnSvc.VerifyPayment(c.Request.Context(), txndomain.VerifyPaymentRequest{
		ClerkID:   clerkID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "payment verified",
		"credited":      result.Credited,
		"credits":       result.Credits,
		"creditBalance": result.Balance,
	})
}
