package repository

import (
	"context"

	"github.com/foodlens/offcache/internal/product/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertBatch(ctx context.Context, db *gorm.DB, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	// Insert-or-replace keyed by code: a later payload for the same code
	// overwrites every column, blobs included.
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		UpdateAll: true,
	}).Create(products).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Order("last_modified_t IS NULL, last_modified_t DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SearchByName(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("product_name LIKE ?", "%"+query+"%").
		Order("last_modified_t IS NULL, last_modified_t DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByCodes(ctx context.Context, db *gorm.DB, codes []string) ([]domain.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("code IN ?", codes).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.Code == "" {
		return nil, nil
	}
	return &p, nil
}
