package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pixelift/pkg/db/pagination"
)

func (s *Server) ListTransactions(c *gin.Context) {
	clerkID := c.GetString(clerkIDKey)

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		page = pagination.Pagination{PageSize: 20}
	}

	items, next, err := s.txnSvc.ListByClerkID(c.Request.Context(), clerkID, page.PageToken, page.PageSize)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": items,
		"page_info": pagination.PageInfo{
			NextPageToken: next,
			HasMore:       next != "",
		},
	})
}
