package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/smallbiznis/pixelift/internal/identity/domain"
	"github.com/smallbiznis/pixelift/internal/logger"
	"go.uber.org/zap"
)

const maxWebhookBytes = 1 << 20

// HandleIdentityWebhook mirrors user lifecycle events from the identity
// provider. Redeliveries and internal persistence failures answer 200,
// so the provider does not retry-storm; only signature failures are
// surfaced.
func (s *Server) HandleIdentityWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		AbortWithError(c, identitydomain.ErrInvalidPayload)
		return
	}

	err = s.identitySvc.ProcessWebhook(c.Request.Context(), payload, c.Request.Header)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "webhook processed"})
	case errors.Is(err, identitydomain.ErrEventAlreadyProcessed):
		c.JSON(http.StatusOK, gin.H{"message": "webhook already processed"})
	case errors.Is(err, identitydomain.ErrEventIgnored):
		c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
	case errors.Is(err, identitydomain.ErrInvalidSignature),
		errors.Is(err, identitydomain.ErrSecretMissing),
		errors.Is(err, identitydomain.ErrInvalidPayload),
		errors.Is(err, identitydomain.ErrInvalidEvent):
		AbortWithError(c, err)
	default:
		logger.FromContext(c.Request.Context()).Error("identity webhook processing failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": "webhook received"})
	}
}
