package migration

import (
	"context"
	"fmt"

	mealdomain "github.com/foodlens/offcache/internal/meal/domain"
	metadomain "github.com/foodlens/offcache/internal/meta/domain"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	"gorm.io/gorm"
)

// Run brings the cache schema up to date. Migration is additive only:
// opening an older store adds the missing columns in place and never drops
// or rewrites existing data. The schema version in meta gates any future
// destructive migration.
func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migration database handle is required")
	}

	if err := db.AutoMigrate(
		&productdomain.Product{},
		&mealdomain.Meal{},
		&mealdomain.MealItem{},
		&metadomain.Meta{},
	); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if err := seedSchemaVersion(db); err != nil {
		return fmt.Errorf("seed schema version: %w", err)
	}
	return nil
}

func seedSchemaVersion(db *gorm.DB) error {
	var existing metadomain.Meta
	err := db.WithContext(context.Background()).
		Where("key = ?", metadomain.KeySchemaVersion).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return err
	}
	if existing.Key != "" {
		return nil
	}
	return db.Create(&metadomain.Meta{
		Key:   metadomain.KeySchemaVersion,
		Value: metadomain.SchemaVersion,
	}).Error
}
