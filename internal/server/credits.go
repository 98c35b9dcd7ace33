package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetCredits(c *gin.Context) {
	clerkID := c.GetString(clerkIDKey)

	credits, err := s.userSvc.Credits(c.Request.Context(), clerkID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"credit":  credits,
	})
}
