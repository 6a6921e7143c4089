package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type DeleteRange string

const (
	RangeToday DeleteRange = "today"
	RangeAll   DeleteRange = "all"
)

type Service interface {
	// Add logs one meal from a selection of product codes. Duplicate codes
	// are kept. Fails with ErrEmptySelection when nothing usable remains
	// after trimming.
	Add(ctx context.Context, codes []string) (snowflake.ID, error)
	// DeleteRange removes meals in the given range together with their
	// items and returns the number of meals deleted.
	DeleteRange(ctx context.Context, r DeleteRange) (int, error)
	// DeleteCode removes a code from every meal and returns the number of
	// items deleted. Meals left empty are deleted too.
	DeleteCode(ctx context.Context, code string) (int, error)
	// ConsumedSince returns one row per consumed item for meals created in
	// the last N calendar days (UTC), newest meals first.
	ConsumedSince(ctx context.Context, days int) ([]ConsumedRow, error)
}

// ConsumedRow is a consumption event as reporting sees it.
type ConsumedRow struct {
	MealID          string    `json:"meal_id"`
	CreatedAtUTC    time.Time `json:"created_at_utc"`
	Code            string    `json:"code"`
	ProductName     string    `json:"product_name"`
	Brands          string    `json:"brands,omitempty"`
	Categories      string    `json:"categories,omitempty"`
	Countries       string    `json:"countries,omitempty"`
	NutriscoreGrade string    `json:"nutriscore_grade,omitempty"`
	EcoscoreGrade   string    `json:"ecoscore_grade,omitempty"`
	NovaGroup       *int64    `json:"nova_group,omitempty"`

	SugarsPer100g     *float64 `json:"sugars_100g,omitempty"`
	SaltPer100g       *float64 `json:"salt_100g,omitempty"`
	EnergyKcalPer100g *float64 `json:"energy_kcal_100g,omitempty"`
	CarbonPer100g     *float64 `json:"carbon_footprint_gco2e_100g,omitempty"`
	OriginCountry     *string  `json:"origin_country,omitempty"`
	AdditivesCount    int      `json:"additives_count"`
}

var (
	ErrEmptySelection = errors.New("empty_selection")
	ErrInvalidDays    = errors.New("invalid_days")
	ErrInvalidRange   = errors.New("invalid_range")
)
