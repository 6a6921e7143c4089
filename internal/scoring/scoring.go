// Package scoring maps grades and counts onto the 0-5 proxy scales used by
// reporting, and aggregates result sets into summaries.
package scoring

import (
	"strings"

	"github.com/gosimple/slug"
)

// unknownGradeScore keeps aggregate means defined even with partial data:
// a missing grade counts as the midpoint instead of being excluded.
const unknownGradeScore = 3.0

// GradeScore maps a letter grade onto 5..1. Unknown grades score the midpoint.
func GradeScore(grade string) float64 {
	switch strings.ToUpper(strings.TrimSpace(grade)) {
	case "A":
		return 5
	case "B":
		return 4
	case "C":
		return 3
	case "D":
		return 2
	case "E":
		return 1
	default:
		return unknownGradeScore
	}
}

// MeanGrade maps a mean score back onto a display letter, boundaries inclusive.
func MeanGrade(mean float64) string {
	switch {
	case mean >= 4.5:
		return "A"
	case mean >= 3.5:
		return "B"
	case mean >= 2.5:
		return "C"
	case mean >= 1.5:
		return "D"
	default:
		return "E"
	}
}

// AdditiveScale selects which additive-count bucketing applies. The
// catalogue-wide and per-meal scales are intentionally independent; do not
// unify them without redefining both contracts.
type AdditiveScale int

const (
	CatalogueScale AdditiveScale = iota
	MealScale
)

// AdditiveScore buckets an additive count onto 0..5 (5 is best).
func AdditiveScore(count int, scale AdditiveScale) int {
	if scale == MealScale {
		switch {
		case count == 0:
			return 5
		case count <= 2:
			return 4
		case count <= 4:
			return 3
		case count <= 7:
			return 2
		default:
			return 1
		}
	}
	switch {
	case count == 0:
		return 5
	case count <= 2:
		return 4
	case count <= 5:
		return 3
	case count <= 10:
		return 2
	case count <= 20:
		return 1
	default:
		return 0
	}
}

// Item is the slice of a product row the aggregates care about.
type Item struct {
	NutriscoreGrade string
	EcoscoreGrade   string
	AdditivesCount  int
	Categories      string
	CarbonPer100g   *float64
}

// Diversity counts distinct first-listed categories across a result set.
type Diversity struct {
	Distinct int     `json:"distinct"`
	Items    int     `json:"items"`
	Ratio    float64 `json:"ratio"`
}

// Summary is the aggregate view reporting renders.
type Summary struct {
	Items          int       `json:"items"`
	HealthScore    float64   `json:"health_score"`
	HealthGrade    string    `json:"health_grade"`
	PlanetScore    float64   `json:"planet_score"`
	PlanetGrade    string    `json:"planet_grade"`
	MeanAdditives  float64   `json:"mean_additives"`
	AdditiveScore  int       `json:"additive_score"`
	TotalCarbon    *float64  `json:"total_carbon_gco2e,omitempty"`
	Diversity      Diversity `json:"diversity"`
}

// Summarize folds a result set into one Summary using the given additive scale.
func Summarize(items []Item, scale AdditiveScale) Summary {
	s := Summary{Items: len(items)}
	if len(items) == 0 {
		s.HealthScore = unknownGradeScore
		s.HealthGrade = MeanGrade(s.HealthScore)
		s.PlanetScore = unknownGradeScore
		s.PlanetGrade = MeanGrade(s.PlanetScore)
		s.AdditiveScore = AdditiveScore(0, scale)
		return s
	}

	var healthSum, planetSum float64
	var additiveSum int
	var carbonSum float64
	carbonKnown := false
	seen := make(map[string]bool)
	withCategory := 0

	for _, item := range items {
		healthSum += GradeScore(item.NutriscoreGrade)
		planetSum += GradeScore(item.EcoscoreGrade)
		additiveSum += item.AdditivesCount
		if item.CarbonPer100g != nil {
			carbonSum += *item.CarbonPer100g
			carbonKnown = true
		}
		if key := categoryKey(item.Categories); key != "" {
			withCategory++
			seen[key] = true
		}
	}

	n := float64(len(items))
	s.HealthScore = healthSum / n
	s.HealthGrade = MeanGrade(s.HealthScore)
	s.PlanetScore = planetSum / n
	s.PlanetGrade = MeanGrade(s.PlanetScore)
	s.MeanAdditives = float64(additiveSum) / n
	s.AdditiveScore = AdditiveScore(int(s.MeanAdditives + 0.5), scale)
	if carbonKnown {
		s.TotalCarbon = &carbonSum
	}

	s.Diversity = Diversity{Distinct: len(seen), Items: withCategory}
	if withCategory > 0 {
		s.Diversity.Ratio = float64(len(seen)) / float64(withCategory)
	}
	return s
}

// categoryKey normalizes the first-listed category so spelling variants of
// the same category count once.
func categoryKey(categories string) string {
	first, _, _ := strings.Cut(categories, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	return slug.Make(first)
}
