package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	removaldomain "github.com/smallbiznis/pixelift/internal/removal/domain"
	userdomain "github.com/smallbiznis/pixelift/internal/user/domain"
)

// 10 MiB upload ceiling, matching what the upstream API accepts.
const maxImageBytes = 10 << 20

type removeBackgroundResponse struct {
	Success       bool   `json:"success"`
	ResultImage   string `json:"resultImage"`
	CreditBalance int64  `json:"creditBalance"`
}

func (s *Server) RemoveBackground(c *gin.Context) {
	clerkID := c.GetString(clerkIDKey)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		AbortWithError(c, removaldomain.ErrInvalidImage)
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		AbortWithError(c, removaldomain.ErrInvalidImage)
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || len(image) == 0 || len(image) > maxImageBytes {
		AbortWithError(c, removaldomain.ErrInvalidImage)
		return
	}

	result, err := s.removalSvc.RemoveBackground(c.Request.Context(), removaldomain.RemoveBackgroundRequest{
		ClerkID:  clerkID,
		FileName: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Image:    image,
	})
	if err != nil {
		if errors.Is(err, userdomain.ErrInsufficientCredits) {
			c.JSON(http.StatusForbidden, gin.H{
				"success":       false,
				"error":         errorPayload{Type: "insufficient_credit", Message: "no credit balance"},
				"creditBalance": result.Balance,
			})
			return
		}
		if errors.Is(err, userdomain.ErrNotFound) {
			// An authenticated caller without a mirrored user record has
			// no credits to spend.
			AbortWithError(c, ErrForbidden)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, removeBackgroundResponse{
		Success:       true,
		ResultImage:   result.ResultImage,
		CreditBalance: result.Balance,
	})
}
