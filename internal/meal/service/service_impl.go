package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodlens/offcache/internal/clock"
	"github.com/foodlens/offcache/internal/extract"
	"github.com/foodlens/offcache/internal/meal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("meal.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Add(ctx context.Context, codes []string) (snowflake.ID, error) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		if c := strings.TrimSpace(code); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return 0, domain.ErrEmptySelection
	}

	meal := &domain.Meal{
		ID:           s.genID.Generate(),
		CreatedAtUTC: s.clock.Now(),
	}
	items := make([]domain.MealItem, 0, len(cleaned))
	for _, code := range cleaned {
		items = append(items, domain.MealItem{Code: code})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, meal, items)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("meal logged",
		zap.String("meal_id", meal.ID.String()),
		zap.Int("items", len(items)),
	)
	return meal.ID, nil
}

func (s *Service) DeleteRange(ctx context.Context, r domain.DeleteRange) (int, error) {
	var from, to *time.Time
	switch r {
	case domain.RangeToday:
		start := startOfDay(s.clock.Now())
		end := start.AddDate(0, 0, 1)
		from, to = &start, &end
	case domain.RangeAll:
	default:
		return 0, domain.ErrInvalidRange
	}

	deleted := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ids, err := s.repo.ListIDsCreatedBetween(ctx, tx, from, to)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := s.repo.DeleteByIDs(ctx, tx, ids); err != nil {
			return err
		}
		deleted = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *Service) DeleteCode(ctx context.Context, code string) (int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil
	}

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.DeleteItemsByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		deleted = n
		return s.repo.DeleteEmptyMeals(ctx, tx)
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (s *Service) ConsumedSince(ctx context.Context, days int) ([]domain.ConsumedRow, error) {
	if days < 1 {
		return nil, domain.ErrInvalidDays
	}

	// Calendar-day cutoff: N days back from today's UTC midnight, so the
	// whole oldest day is included.
	cutoff := startOfDay(s.clock.Now()).AddDate(0, 0, -days)
	items, err := s.repo.ConsumedSince(ctx, s.db, cutoff)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ConsumedRow, 0, len(items))
	for i := range items {
		rows = append(rows, toConsumedRow(&items[i]))
	}
	return rows, nil
}

func toConsumedRow(item *domain.ConsumedItem) domain.ConsumedRow {
	m := extract.Derive(item.Nutriments, item.EcoscoreData, item.Raw)
	return domain.ConsumedRow{
		MealID:            item.MealID.String(),
		CreatedAtUTC:      item.CreatedAtUTC,
		Code:              item.Code,
		ProductName:       item.ProductName,
		Brands:            item.Brands,
		Categories:        item.Categories,
		Countries:         item.Countries,
		NutriscoreGrade:   item.NutriscoreGrade,
		EcoscoreGrade:     item.EcoscoreGrade,
		NovaGroup:         item.NovaGroup,
		SugarsPer100g:     m.SugarsPer100g,
		SaltPer100g:       m.SaltPer100g,
		EnergyKcalPer100g: m.EnergyKcalPer100g,
		CarbonPer100g:     m.CarbonPer100g,
		OriginCountry:     m.OriginCountry,
		AdditivesCount:    m.AdditivesCount,
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
