package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pixelift/internal/config"
	identitydomain "github.com/smallbiznis/pixelift/internal/identity/domain"
	"github.com/smallbiznis/pixelift/internal/plan"
	removaldomain "github.com/smallbiznis/pixelift/internal/removal/domain"
	txndomain "github.com/smallbiznis/pixelift/internal/transaction/domain"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal_error")
)

// ErrorHandlingMiddleware turns errors collected on the context into the
// JSON envelope. Detail strings only leave the process outside
// production.
func ErrorHandlingMiddleware(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if !cfg.IsProduction() && payload.Details == "" {
			payload.Details = lastErr.Err.Error()
		}
		if cfg.IsProduction() {
			payload.Details = ""
		}
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, identitydomain.ErrInvalidSignature):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "webhook signature verification failed",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, userdomain.ErrInsufficientCredits):
		return http.StatusForbidden, errorPayload{
			Type:    "insufficient_credit",
			Message: "no credit balance",
		}
	case errors.Is(err, userdomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "user not found",
		}
	case errors.Is(err, txndomain.ErrTransactionNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "transaction not found",
		}
	case errors.Is(err, txndomain.ErrOrderNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "order not found",
		}
	case errors.Is(err, txndomain.ErrSignatureMismatch):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid signature",
		}
	case errors.Is(err, txndomain.ErrOrderNotPaid):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "order is not paid",
		}
	case errors.Is(err, plan.ErrUnknownPlan):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid plan, expected one of: " + strings.Join(plan.IDs(), ", "),
		}
	case errors.Is(err, removaldomain.ErrInvalidImage):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "missing or unreadable image file",
		}
	case errors.Is(err, txndomain.ErrInvalidRequest),
		errors.Is(err, identitydomain.ErrInvalidPayload),
		errors.Is(err, identitydomain.ErrInvalidEvent),
		errors.Is(err, userdomain.ErrInvalidClerkID),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidCredits):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid request",
		}
	case errors.Is(err, identitydomain.ErrSecretMissing):
		return http.StatusInternalServerError, errorPayload{
			Type:    "configuration_error",
			Message: "webhook secret is not configured",
		}
	case errors.Is(err, removaldomain.ErrNotConfigured):
		return http.StatusInternalServerError, errorPayload{
			Type:    "configuration_error",
			Message: "background removal API key is not configured",
		}
	case errors.Is(err, removaldomain.ErrUpstream):
		return http.StatusInternalServerError, errorPayload{
			Type:    "upstream_error",
			Message: "background removal service failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
