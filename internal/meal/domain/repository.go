package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConsumedItem is one (meal, item) pair joined with its product. The blobs
// ride along so the service can extract derived metrics per row.
type ConsumedItem struct {
	MealID          snowflake.ID   `gorm:"column:meal_id"`
	CreatedAtUTC    time.Time      `gorm:"column:created_at_utc"`
	Code            string         `gorm:"column:code"`
	ProductName     string         `gorm:"column:product_name"`
	Brands          string         `gorm:"column:brands"`
	Categories      string         `gorm:"column:categories"`
	Countries       string         `gorm:"column:countries"`
	NutriscoreGrade string         `gorm:"column:nutriscore_grade"`
	EcoscoreGrade   string         `gorm:"column:ecoscore_grade"`
	NovaGroup       *int64         `gorm:"column:nova_group"`
	EcoscoreData    datatypes.JSON `gorm:"column:ecoscore_data_json"`
	Nutriments      datatypes.JSON `gorm:"column:nutriments_json"`
	Raw             datatypes.JSON `gorm:"column:raw_json"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, meal *Meal, items []MealItem) error
	// ListIDsCreatedBetween returns meal ids with from <= created_at_utc < to.
	// Nil bounds are open.
	ListIDsCreatedBetween(ctx context.Context, db *gorm.DB, from, to *time.Time) ([]snowflake.ID, error)
	// DeleteByIDs removes the meals and their items together.
	DeleteByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) error
	DeleteItemsByCode(ctx context.Context, db *gorm.DB, code string) (int64, error)
	// DeleteEmptyMeals enforces the cascade-on-empty invariant: a meal whose
	// last item is gone must not persist.
	DeleteEmptyMeals(ctx context.Context, db *gorm.DB) error
	ConsumedSince(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]ConsumedItem, error)
}
