package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetMeta(c *gin.Context) {
	meta, err := s.metaRepo.All(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"cache_path": s.cfg.DBPath,
		"meta":       meta,
	}})
}
