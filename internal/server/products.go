package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListProducts(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"), 0)
	if err != nil || limit < 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows, err := s.productSvc.List(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	limit, err := parseOptionalInt(c.Query("limit"), 25)
	if err != nil || limit < 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	if c.Query("source") == "online" {
		rows, err := s.syncSvc.SearchOnline(c.Request.Context(), query, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
		return
	}

	rows, err := s.productSvc.SearchByName(c.Request.Context(), query, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// LookupProducts resolves a comma-separated code list, preserving the
// request order in the response.
func (s *Server) LookupProducts(c *gin.Context) {
	raw := strings.Split(c.Query("codes"), ",")

	rows, err := s.productSvc.GetByCodes(c.Request.Context(), raw)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) GetProduct(c *gin.Context) {
	row, err := s.productSvc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if row == nil {
		AbortWithError(c, ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": row})
}

func (s *Server) RefreshProduct(c *gin.Context) {
	found, err := s.syncSvc.RefreshCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !found {
		AbortWithError(c, ErrNotFound)
		return
	}

	row, err := s.productSvc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": row})
}

func parseOptionalInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
