package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodlens/offcache/internal/clock"
	"github.com/foodlens/offcache/internal/config"
	metadomain "github.com/foodlens/offcache/internal/meta/domain"
	metarepository "github.com/foodlens/offcache/internal/meta/repository"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	productrepository "github.com/foodlens/offcache/internal/product/repository"
	productservice "github.com/foodlens/offcache/internal/product/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSource struct {
	pages     map[int][]map[string]any
	byCode    map[string]map[string]any
	searchHit []map[string]any
	err       error
	pageCalls []int
}

func (f *fakeSource) FetchPage(_ context.Context, _ string, page, _ int) ([]map[string]any, error) {
	f.pageCalls = append(f.pageCalls, page)
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

func (f *fakeSource) FetchByCode(_ context.Context, code string) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byCode[code], nil
}

func (f *fakeSource) SearchByName(_ context.Context, _ string, _ int) ([]map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.searchHit, nil
}

func newTestSyncer(t *testing.T, source Source) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&productdomain.Product{}, &metadomain.Meta{}))

	products := productservice.New(productservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)),
		Repo:  productrepository.Provide(),
		Meta:  metarepository.Provide(),
	})

	svc := New(Params{
		Source:   source,
		Products: products,
		SyncCfg:  config.StaticSyncConfigHolder(config.DefaultSyncConfig()),
		Log:      zap.NewNop(),
	})
	return svc, db
}

func pageOf(codes ...string) []map[string]any {
	out := make([]map[string]any, 0, len(codes))
	for i, code := range codes {
		out = append(out, map[string]any{
			"code":            code,
			"product_name":    "Product " + code,
			"last_modified_t": float64(i + 1),
		})
	}
	return out
}

func TestRun_CollectsAllPages(t *testing.T) {
	source := &fakeSource{pages: map[int][]map[string]any{
		1: pageOf("1", "2"),
		2: pageOf("3"),
	}}
	svc, db := newTestSyncer(t, source)

	result, err := svc.Run(context.Background(), RunRequest{Country: "fr", Pages: 2, PageSize: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "fr", result.Country)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.Upserted)
	assert.Equal(t, []int{1, 2}, source.pageCalls)

	var count int64
	require.NoError(t, db.Model(&productdomain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestRun_DefaultsFromConfig(t *testing.T) {
	source := &fakeSource{pages: map[int][]map[string]any{}}
	svc, _ := newTestSyncer(t, source)

	defaults := config.DefaultSyncConfig()
	result, err := svc.Run(context.Background(), RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, defaults.Country, result.Country)
	assert.Equal(t, defaults.Pages, result.Pages)
	assert.Len(t, source.pageCalls, defaults.Pages)
}

func TestRun_FetchFailureLeavesCacheUntouched(t *testing.T) {
	source := &fakeSource{pages: map[int][]map[string]any{1: pageOf("1")}}
	svc, db := newTestSyncer(t, source)

	_, err := svc.Run(context.Background(), RunRequest{Pages: 1})
	require.NoError(t, err)

	source.err = errors.New("boom")
	_, err = svc.Run(context.Background(), RunRequest{Pages: 2})
	require.Error(t, err)

	// The failed run wrote nothing, including no partial pages.
	var count int64
	require.NoError(t, db.Model(&productdomain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRefreshCode(t *testing.T) {
	source := &fakeSource{byCode: map[string]map[string]any{
		"111": {"code": "111", "product_name": "Known"},
	}}
	svc, db := newTestSyncer(t, source)

	found, err := svc.RefreshCode(context.Background(), "111")
	require.NoError(t, err)
	assert.True(t, found)

	var stored productdomain.Product
	require.NoError(t, db.First(&stored, "code = ?", "111").Error)
	assert.Equal(t, "Known", stored.ProductName)

	found, err = svc.RefreshCode(context.Background(), "999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearchOnline_MergesAndPreservesRanking(t *testing.T) {
	source := &fakeSource{searchHit: []map[string]any{
		{"code": "222", "product_name": "Second in cache, first in ranking"},
		{"code": float64(111), "product_name": "Numeric code"},
	}}
	svc, db := newTestSyncer(t, source)

	rows, err := svc.SearchOnline(context.Background(), "anything", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "222", rows[0].Code)
	assert.Equal(t, "111", rows[1].Code)

	var count int64
	require.NoError(t, db.Model(&productdomain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSearchOnline_NoHits(t *testing.T) {
	source := &fakeSource{}
	svc, _ := newTestSyncer(t, source)

	rows, err := svc.SearchOnline(context.Background(), "nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
