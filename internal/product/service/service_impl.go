package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/foodlens/offcache/internal/clock"
	"github.com/foodlens/offcache/internal/extract"
	metadomain "github.com/foodlens/offcache/internal/meta/domain"
	"github.com/foodlens/offcache/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultListLimit = 200_000

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
	Meta  metadomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
	meta  metadomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		clock: p.Clock,
		repo:  p.Repo,
		meta:  p.Meta,
	}
}

func (s *Service) Upsert(ctx context.Context, records []map[string]any) (int, error) {
	products := make([]*domain.Product, 0, len(records))
	skipped := 0
	for _, record := range records {
		p := fromPayload(record)
		if p == nil {
			skipped++
			continue
		}
		products = append(products, p)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpsertBatch(ctx, tx, products); err != nil {
			return err
		}
		return s.meta.Set(ctx, tx, metadomain.KeyLastSyncUTC, s.clock.Now().Format(time.RFC3339))
	})
	if err != nil {
		return 0, err
	}

	if skipped > 0 {
		s.log.Warn("skipped records without code", zap.Int("skipped", skipped))
	}
	return len(products), nil
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.Row, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	items, err := s.repo.List(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	return toRows(items), nil
}

func (s *Service) SearchByName(ctx context.Context, query string, limit int) ([]domain.Row, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Row{}, nil
	}
	if limit <= 0 {
		limit = 25
	}
	items, err := s.repo.SearchByName(ctx, s.db, query, limit)
	if err != nil {
		return nil, err
	}
	return toRows(items), nil
}

func (s *Service) GetByCodes(ctx context.Context, codes []string) ([]domain.Row, error) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		if c := strings.TrimSpace(code); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return []domain.Row{}, nil
	}

	items, err := s.repo.FindByCodes(ctx, s.db, cleaned)
	if err != nil {
		return nil, err
	}

	// Reorder to match the request: callers display selections in the order
	// the user picked them, not in store order.
	byCode := make(map[string]*domain.Product, len(items))
	for i := range items {
		byCode[items[i].Code] = &items[i]
	}
	rows := make([]domain.Row, 0, len(cleaned))
	seen := make(map[string]bool, len(cleaned))
	for _, code := range cleaned {
		p, ok := byCode[code]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		rows = append(rows, toRow(p))
	}
	return rows, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Row, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	p, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	row := toRow(p)
	return &row, nil
}

// fromPayload maps one raw API payload onto the stored shape. Returns nil
// when the payload has no usable code.
func fromPayload(record map[string]any) *domain.Product {
	if record == nil {
		return nil
	}
	code := strings.TrimSpace(asText(record["code"]))
	if code == "" {
		return nil
	}

	nutriments, _ := record["nutriments"].(map[string]any)
	ecoscoreData, _ := record["ecoscore_data"].(map[string]any)

	return &domain.Product{
		Code:            code,
		LastModifiedT:   asInt(record["last_modified_t"]),
		ProductName:     asText(record["product_name"]),
		Brands:          asText(record["brands"]),
		Categories:      asText(record["categories"]),
		Countries:       asText(record["countries"]),
		NutriscoreGrade: asText(record["nutriscore_grade"]),
		EcoscoreGrade:   asText(record["ecoscore_grade"]),
		NovaGroup:       asInt(record["nova_group"]),
		EcoscoreData:    marshalBlob(ecoscoreData),
		Nutriments:      marshalBlob(nutriments),
		Raw:             marshalBlob(record),
	}
}

func toRows(items []domain.Product) []domain.Row {
	rows := make([]domain.Row, 0, len(items))
	for i := range items {
		rows = append(rows, toRow(&items[i]))
	}
	return rows
}

func toRow(p *domain.Product) domain.Row {
	m := extract.Derive(p.Nutriments, p.EcoscoreData, p.Raw)
	return domain.Row{
		Code:              p.Code,
		LastModifiedT:     p.LastModifiedT,
		ProductName:       p.ProductName,
		Brands:            p.Brands,
		Categories:        p.Categories,
		Countries:         p.Countries,
		NutriscoreGrade:   p.NutriscoreGrade,
		EcoscoreGrade:     p.EcoscoreGrade,
		NovaGroup:         p.NovaGroup,
		ImageURL:          m.ImageURL,
		SugarsPer100g:     m.SugarsPer100g,
		SaltPer100g:       m.SaltPer100g,
		EnergyKcalPer100g: m.EnergyKcalPer100g,
		CarbonPer100g:     m.CarbonPer100g,
		OriginCountry:     m.OriginCountry,
		AdditivesCount:    m.AdditivesCount,
	}
}

func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asInt(v any) *int64 {
	switch t := v.(type) {
	case float64:
		n := int64(t)
		return &n
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return nil
		}
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func marshalBlob(v map[string]any) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("{}")
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(blob)
}
