package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodlens/offcache/internal/clock"
	"github.com/foodlens/offcache/internal/meal/domain"
	"github.com/foodlens/offcache/internal/meal/repository"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Meal{}, &domain.MealItem{}, &productdomain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC))
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, db, fake
}

func seedProduct(t *testing.T, db *gorm.DB, code, name string) {
	t.Helper()
	require.NoError(t, db.Create(&productdomain.Product{
		Code:         code,
		ProductName:  name,
		EcoscoreData: datatypes.JSON("{}"),
		Nutriments:   datatypes.JSON(`{"sugars_100g": 4.2}`),
		Raw:          datatypes.JSON("{}"),
	}).Error)
}

func TestAdd_EmptySelection(t *testing.T) {
	svc, db, _ := newTestService(t)

	_, err := svc.Add(context.Background(), []string{})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	_, err = svc.Add(context.Background(), []string{"   ", ""})
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	var count int64
	require.NoError(t, db.Model(&domain.Meal{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAdd_CreatesMealAndItems(t *testing.T) {
	svc, db, fake := newTestService(t)

	id, err := svc.Add(context.Background(), []string{" 111 ", "222", "111"})
	require.NoError(t, err)
	require.NotZero(t, id)

	var meal domain.Meal
	require.NoError(t, db.First(&meal, "id = ?", id).Error)
	assert.True(t, fake.Now().Equal(meal.CreatedAtUTC))

	var items []domain.MealItem
	require.NoError(t, db.Order("id").Find(&items, "meal_id = ?", id).Error)
	require.Len(t, items, 3)
	assert.Equal(t, "111", items[0].Code)
	assert.Equal(t, "222", items[1].Code)
	assert.Equal(t, "111", items[2].Code)
}

func TestDeleteRange_TodayOnly(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, []string{"old"})
	require.NoError(t, err)

	fake.Advance(48 * time.Hour)
	todayID, err := svc.Add(ctx, []string{"fresh"})
	require.NoError(t, err)

	n, err := svc.DeleteRange(ctx, domain.RangeToday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var remaining []domain.Meal
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.NotEqual(t, todayID, remaining[0].ID)

	var orphaned int64
	require.NoError(t, db.Model(&domain.MealItem{}).Where("meal_id = ?", todayID).Count(&orphaned).Error)
	assert.Equal(t, int64(0), orphaned)
}

func TestDeleteRange_All(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, []string{"a"})
	require.NoError(t, err)
	fake.Advance(24 * time.Hour)
	_, err = svc.Add(ctx, []string{"b"})
	require.NoError(t, err)

	n, err := svc.DeleteRange(ctx, domain.RangeAll)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var meals, items int64
	require.NoError(t, db.Model(&domain.Meal{}).Count(&meals).Error)
	require.NoError(t, db.Model(&domain.MealItem{}).Count(&items).Error)
	assert.Equal(t, int64(0), meals)
	assert.Equal(t, int64(0), items)
}

func TestDeleteRange_Invalid(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.DeleteRange(context.Background(), domain.DeleteRange("last-week"))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestDeleteCode_CascadesEmptyMeals(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	soloID, err := svc.Add(ctx, []string{"111"})
	require.NoError(t, err)
	mixedID, err := svc.Add(ctx, []string{"111", "222"})
	require.NoError(t, err)

	n, err := svc.DeleteCode(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// The meal that held only the deleted code is gone; the mixed meal stays.
	var meals []domain.Meal
	require.NoError(t, db.Find(&meals).Error)
	require.Len(t, meals, 1)
	assert.Equal(t, mixedID, meals[0].ID)

	var count int64
	require.NoError(t, db.Model(&domain.MealItem{}).Where("meal_id = ?", soloID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestConsumedSince(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()

	seedProduct(t, db, "111", "Yesterday snack")
	seedProduct(t, db, "222", "Breakfast")

	_, err := svc.Add(ctx, []string{"111"})
	require.NoError(t, err)

	fake.Advance(24 * time.Hour)
	_, err = svc.Add(ctx, []string{"222", "222"})
	require.NoError(t, err)

	// days=1 starts at today's UTC midnight minus one day, so yesterday's
	// meal is still inside the window.
	rows, err := svc.ConsumedSince(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Newest meal first, and a code logged twice appears twice.
	assert.Equal(t, "222", rows[0].Code)
	assert.Equal(t, "222", rows[1].Code)
	assert.Equal(t, "111", rows[2].Code)
	assert.Equal(t, "Yesterday snack", rows[2].ProductName)

	// Derived metrics come from the cached nutriments blob.
	require.NotNil(t, rows[0].SugarsPer100g)
	assert.Equal(t, 4.2, *rows[0].SugarsPer100g)

	_, err = svc.ConsumedSince(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)
}

func TestConsumedSince_ExcludesOldMeals(t *testing.T) {
	svc, db, fake := newTestService(t)
	ctx := context.Background()

	seedProduct(t, db, "111", "Ancient")

	_, err := svc.Add(ctx, []string{"111"})
	require.NoError(t, err)

	fake.Advance(10 * 24 * time.Hour)
	rows, err := svc.ConsumedSince(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
