package server

import (
	"net/http"

	"github.com/foodlens/offcache/internal/scoring"
	"github.com/gin-gonic/gin"
)

// CatalogueSummary aggregates the whole cached catalogue into the proxy
// scores the dashboard renders.
func (s *Server) CatalogueSummary(c *gin.Context) {
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

	items := make([]scoring.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, scoring.Item{
			NutriscoreGrade: row.NutriscoreGrade,
			EcoscoreGrade:   row.EcoscoreGrade,
			AdditivesCount:  row.AdditivesCount,
			Categories:      row.Categories,
			CarbonPer100g:   row.CarbonPer100g,
		})
	}
	summary := scoring.Summarize(items, scoring.CatalogueScale)
	c.JSON(http.StatusOK, gin.H{"data": summary})
}
