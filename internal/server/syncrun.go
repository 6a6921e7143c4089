package server

import (
	"net/http"

	"github.com/foodlens/offcache/internal/syncer"
	"github.com/gin-gonic/gin"
)

type runSyncRequest struct {
	Country  string `json:"country"`
	Pages    int    `json:"pages"`
	PageSize int    `json:"page_size"`
}

// RunSync pulls recent products from the source into the cache. The run is
// synchronous: the response carries the batch result.
func (s *Server) RunSync(c *gin.Context) {
	var req runSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	if req.Pages < 0 || req.PageSize < 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.syncSvc.Run(c.Request.Context(), syncer.RunRequest{
		Country:  req.Country,
		Pages:    req.Pages,
		PageSize: req.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
