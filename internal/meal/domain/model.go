package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Meal is one logged eating event. Items reference products by code only;
// a code may point at a product the cache has not seen yet.
type Meal struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	CreatedAtUTC time.Time    `gorm:"column:created_at_utc;not null;index"`
}

func (Meal) TableName() string { return "meals" }

// MealItem records one consumed code inside a meal. Repeated codes are
// repeated consumption, so duplicates are kept.
type MealItem struct {
	ID     int64        `gorm:"primaryKey;autoIncrement"`
	MealID snowflake.ID `gorm:"column:meal_id;not null;index"`
	Code   string       `gorm:"type:text;not null;index"`
}

func (MealItem) TableName() string { return "meal_items" }
