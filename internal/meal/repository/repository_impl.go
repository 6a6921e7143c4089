package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodlens/offcache/internal/meal/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, meal *domain.Meal, items []domain.MealItem) error {
	if err := db.WithContext(ctx).Create(meal).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].MealID = meal.ID
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) ListIDsCreatedBetween(ctx context.Context, db *gorm.DB, from, to *time.Time) ([]snowflake.ID, error) {
	stmt := db.WithContext(ctx).Model(&domain.Meal{})
	if from != nil {
		stmt = stmt.Where("created_at_utc >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("created_at_utc < ?", *to)
	}

	var ids []snowflake.ID
	if err := stmt.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) DeleteByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Where("meal_id IN ?", ids).Delete(&domain.MealItem{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Meal{}).Error
}

func (r *repo) DeleteItemsByCode(ctx context.Context, db *gorm.DB, code string) (int64, error) {
	res := db.WithContext(ctx).Where("code = ?", code).Delete(&domain.MealItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) DeleteEmptyMeals(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM meals WHERE id NOT IN (SELECT DISTINCT meal_id FROM meal_items)`,
	).Error
}

func (r *repo) ConsumedSince(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.ConsumedItem, error) {
	var items []domain.ConsumedItem
	err := db.WithContext(ctx).Raw(
		`SELECT mi.meal_id, m.created_at_utc, p.code, p.product_name, p.brands,
		        p.categories, p.countries, p.nutriscore_grade, p.ecoscore_grade,
		        p.nova_group, p.ecoscore_data_json, p.nutriments_json, p.raw_json
		 FROM meal_items mi
		 JOIN meals m ON m.id = mi.meal_id
		 JOIN products p ON p.code = mi.code
		 WHERE m.created_at_utc >= ?
		 ORDER BY m.created_at_utc DESC, mi.id ASC`,
		cutoff,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
