package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	UpsertBatch(ctx context.Context, db *gorm.DB, products []*Product) error
	List(ctx context.Context, db *gorm.DB, limit int) ([]Product, error)
	SearchByName(ctx context.Context, db *gorm.DB, query string, limit int) ([]Product, error)
	FindByCodes(ctx context.Context, db *gorm.DB, codes []string) ([]Product, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Product, error)
}
