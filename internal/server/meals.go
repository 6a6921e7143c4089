package server

import (
	"net/http"

	mealdomain "github.com/foodlens/offcache/internal/meal/domain"
	"github.com/foodlens/offcache/internal/scoring"
	"github.com/gin-gonic/gin"
)

type createMealRequest struct {
	Codes []string `json:"codes"`
}

func (s *Server) CreateMeal(c *gin.Context) {
	var req createMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, err := s.mealSvc.Add(c.Request.Context(), req.Codes)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"meal_id": id.String()}})
}

func (s *Server) DeleteMeals(c *gin.Context) {
	r := mealdomain.DeleteRange(c.DefaultQuery("range", string(mealdomain.RangeToday)))

	deleted, err := s.mealSvc.DeleteRange(c.Request.Context(), r)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted_meals": deleted}})
}

func (s *Server) DeleteMealCode(c *gin.Context) {
	deleted, err := s.mealSvc.DeleteCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted_items": deleted}})
}

func (s *Server) ListConsumed(c *gin.Context) {
	days, err := parseOptionalInt(c.Query("days"), 1)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows, err := s.mealSvc.ConsumedSince(c.Request.Context(), days)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func (s *Server) ConsumptionSummary(c *gin.Context) {
	days, err := parseOptionalInt(c.Query("days"), 7)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rows, err := s.mealSvc.ConsumedSince(c.Request.Context(), days)
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
	summary := scoring.Summarize(items, scoring.MealScale)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"days": days, "summary": summary}})
}
