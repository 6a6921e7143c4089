package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/foodlens/offcache/internal/config"
	mealdomain "github.com/foodlens/offcache/internal/meal/domain"
	"github.com/foodlens/offcache/internal/offclient"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	"github.com/foodlens/offcache/internal/syncer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeProductService struct {
	rows       []productdomain.Row
	lastLookup []string
}

func (f *fakeProductService) Upsert(ctx context.Context, records []map[string]any) (int, error) {
	_ = ctx
	return len(records), nil
}

func (f *fakeProductService) List(ctx context.Context, limit int) ([]productdomain.Row, error) {
	_ = ctx
	_ = limit
	return f.rows, nil
}

func (f *fakeProductService) SearchByName(ctx context.Context, query string, limit int) ([]productdomain.Row, error) {
	_ = ctx
	_ = query
	_ = limit
	return f.rows, nil
}

func (f *fakeProductService) GetByCodes(ctx context.Context, codes []string) ([]productdomain.Row, error) {
	_ = ctx
	f.lastLookup = codes
	return f.rows, nil
}

func (f *fakeProductService) GetByCode(ctx context.Context, code string) (*productdomain.Row, error) {
	_ = ctx
	for i := range f.rows {
		if f.rows[i].Code == code {
			return &f.rows[i], nil
		}
	}
	return nil, nil
}

type fakeMealService struct {
	addErr    error
	addCalls  int
	lastCodes []string
}

func (f *fakeMealService) Add(ctx context.Context, codes []string) (snowflake.ID, error) {
	_ = ctx
	f.addCalls++
	f.lastCodes = codes
	if f.addErr != nil {
		return 0, f.addErr
	}
	return snowflake.ID(42), nil
}

func (f *fakeMealService) DeleteRange(ctx context.Context, r mealdomain.DeleteRange) (int, error) {
	_ = ctx
	if r != mealdomain.RangeToday && r != mealdomain.RangeAll {
		return 0, mealdomain.ErrInvalidRange
	}
	return 2, nil
}

func (f *fakeMealService) DeleteCode(ctx context.Context, code string) (int, error) {
	_ = ctx
	_ = code
	return 1, nil
}

func (f *fakeMealService) ConsumedSince(ctx context.Context, days int) ([]mealdomain.ConsumedRow, error) {
	_ = ctx
	if days < 1 {
		return nil, mealdomain.ErrInvalidDays
	}
	return nil, nil
}

type failingSource struct{}

func (failingSource) FetchPage(context.Context, string, int, int) ([]map[string]any, error) {
	return nil, offclient.ErrUpstreamUnavailable
}

func (failingSource) FetchByCode(context.Context, string) (map[string]any, error) {
	return nil, offclient.ErrUpstreamUnavailable
}

func (failingSource) SearchByName(context.Context, string, int) ([]map[string]any, error) {
	return nil, offclient.ErrUpstreamUnavailable
}

func newTestServer(products *fakeProductService, meals *fakeMealService) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	syncSvc := syncer.New(syncer.Params{
		Source:   failingSource{},
		Products: products,
		SyncCfg:  config.StaticSyncConfigHolder(config.DefaultSyncConfig()),
		Log:      zap.NewNop(),
	})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:     router,
		cfg:        config.Config{DBPath: "/tmp/off_cache.sqlite3"},
		log:        zap.NewNop(),
		productSvc: products,
		mealSvc:    meals,
		syncSvc:    syncSvc,
	}
	srv.RegisterAPIRoutes()
	return srv, router
}

func TestGetProductNotFound(t *testing.T) {
	_, router := newTestServer(&fakeProductService{}, &fakeMealService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products/000", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestGetProductFound(t *testing.T) {
	products := &fakeProductService{rows: []productdomain.Row{{Code: "111", ProductName: "Known"}}}
	_, router := newTestServer(products, &fakeMealService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products/111", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"111"`) {
		t.Fatalf("expected product in body, got %s", resp.Body.String())
	}
}

func TestLookupProductsSplitsCodes(t *testing.T) {
	products := &fakeProductService{}
	_, router := newTestServer(products, &fakeMealService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup?codes=2,1,3", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(products.lastLookup) != 3 || products.lastLookup[0] != "2" {
		t.Fatalf("expected codes [2 1 3], got %v", products.lastLookup)
	}
}

func TestListProductsRejectsBadLimit(t *testing.T) {
	_, router := newTestServer(&fakeProductService{}, &fakeMealService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=abc", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestCreateMealEmptySelection(t *testing.T) {
	meals := &fakeMealService{addErr: mealdomain.ErrEmptySelection}
	_, router := newTestServer(&fakeProductService{}, meals)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals", bytes.NewBufferString(`{"codes":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestCreateMealReturnsID(t *testing.T) {
	meals := &fakeMealService{}
	_, router := newTestServer(&fakeProductService{}, meals)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/meals", bytes.NewBufferString(`{"codes":["111","222"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if meals.addCalls != 1 || len(meals.lastCodes) != 2 {
		t.Fatalf("expected one add call with 2 codes, got %d calls %v", meals.addCalls, meals.lastCodes)
	}
	if !strings.Contains(resp.Body.String(), `"meal_id":"42"`) {
		t.Fatalf("expected meal_id in body, got %s", resp.Body.String())
	}
}

func TestDeleteMealsInvalidRange(t *testing.T) {
	_, router := newTestServer(&fakeProductService{}, &fakeMealService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/api/v1/meals?range=last-week", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSearchOnlineUpstreamDown(t *testing.T) {
	_, router := newTestServer(&fakeProductService{}, &fakeMealService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products/search?q=choco&source=online", nil))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}
