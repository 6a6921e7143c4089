package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Upsert stores a batch of raw product payloads, insert-or-replace keyed
	// by code. Payloads without a usable code are skipped. The whole batch
	// commits in one transaction and stamps the last-sync marker.
	Upsert(ctx context.Context, records []map[string]any) (int, error)
	List(ctx context.Context, limit int) ([]Row, error)
	SearchByName(ctx context.Context, query string, limit int) ([]Row, error)
	// GetByCodes returns rows in the same relative order as the input codes.
	// Codes not present in the cache are absent from the result.
	GetByCodes(ctx context.Context, codes []string) ([]Row, error)
	GetByCode(ctx context.Context, code string) (*Row, error)
}

// Row is a product as readers see it: promoted columns plus the derived
// metrics extracted from the stored blobs.
type Row struct {
	Code            string  `json:"code"`
	LastModifiedT   *int64  `json:"last_modified_t,omitempty"`
	ProductName     string  `json:"product_name"`
	Brands          string  `json:"brands,omitempty"`
	Categories      string  `json:"categories,omitempty"`
	Countries       string  `json:"countries,omitempty"`
	NutriscoreGrade string  `json:"nutriscore_grade,omitempty"`
	EcoscoreGrade   string  `json:"ecoscore_grade,omitempty"`
	NovaGroup       *int64  `json:"nova_group,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`

	SugarsPer100g     *float64 `json:"sugars_100g,omitempty"`
	SaltPer100g       *float64 `json:"salt_100g,omitempty"`
	EnergyKcalPer100g *float64 `json:"energy_kcal_100g,omitempty"`
	CarbonPer100g     *float64 `json:"carbon_footprint_gco2e_100g,omitempty"`
	OriginCountry     *string  `json:"origin_country,omitempty"`
	AdditivesCount    int      `json:"additives_count"`
}

var (
	ErrInvalidLimit = errors.New("invalid_limit")
)
