package syncer

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/foodlens/offcache/internal/config"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Source is the remote product API the cache syncs from.
type Source interface {
	FetchPage(ctx context.Context, country string, page, pageSize int) ([]map[string]any, error)
	FetchByCode(ctx context.Context, code string) (map[string]any, error)
	SearchByName(ctx context.Context, query string, limit int) ([]map[string]any, error)
}

var (
	syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "offcache_sync_runs_total",
		Help: "Catalogue sync runs by outcome.",
	}, []string{"outcome"})
	syncUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "offcache_sync_products_upserted_total",
		Help: "Products written to the cache by sync runs.",
	})
)

type RunRequest struct {
	Country  string
	Pages    int
	PageSize int
}

type RunResult struct {
	RunID    string `json:"run_id"`
	Country  string `json:"country"`
	Pages    int    `json:"pages"`
	Fetched  int    `json:"fetched"`
	Upserted int    `json:"upserted"`
}

type Params struct {
	fx.In

	Source   Source
	Products productdomain.Service
	SyncCfg  *config.SyncConfigHolder
	Log      *zap.Logger
}

type Service struct {
	source   Source
	products productdomain.Service
	syncCfg  *config.SyncConfigHolder
	log      *zap.Logger
}

func New(p Params) *Service {
	return &Service{
		source:   p.Source,
		products: p.Products,
		syncCfg:  p.SyncCfg,
		log:      p.Log.Named("syncer"),
	}
}

// Run pulls recently modified products page by page and stores them in one
// batch, so a failed run leaves the previous cache state untouched.
func (s *Service) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	defaults := s.syncCfg.Get()
	if strings.TrimSpace(req.Country) == "" {
		req.Country = defaults.Country
	}
	if req.Pages < 1 {
		req.Pages = defaults.Pages
	}
	if req.PageSize < 1 {
		req.PageSize = defaults.PageSize
	}

	result := RunResult{
		RunID:   uuid.NewString(),
		Country: req.Country,
		Pages:   req.Pages,
	}
	started := time.Now()

	var batch []map[string]any
	for page := 1; page <= req.Pages; page++ {
		products, err := s.source.FetchPage(ctx, req.Country, page, req.PageSize)
		if err != nil {
			syncRuns.WithLabelValues("fetch_failed").Inc()
			s.log.Warn("sync fetch failed",
				zap.String("run_id", result.RunID),
				zap.Int("page", page),
				zap.Error(err),
			)
			return result, err
		}
		batch = append(batch, products...)
	}
	result.Fetched = len(batch)

	upserted, err := s.products.Upsert(ctx, batch)
	if err != nil {
		syncRuns.WithLabelValues("store_failed").Inc()
		return result, err
	}
	result.Upserted = upserted

	syncRuns.WithLabelValues("ok").Inc()
	syncUpserted.Add(float64(upserted))
	s.log.Info("sync run complete",
		zap.String("run_id", result.RunID),
		zap.String("country", result.Country),
		zap.Int("fetched", result.Fetched),
		zap.Int("upserted", result.Upserted),
		zap.Duration("took", time.Since(started)),
	)
	return result, nil
}

// RefreshCode fetches one product and stores it. Returns false when the
// source does not know the code.
func (s *Service) RefreshCode(ctx context.Context, code string) (bool, error) {
	product, err := s.source.FetchByCode(ctx, code)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, nil
	}
	if _, err := s.products.Upsert(ctx, []map[string]any{product}); err != nil {
		return false, err
	}
	return true, nil
}

// SearchOnline searches the source by name, merges the hits into the cache,
// and returns them as cache rows in the order the source ranked them.
func (s *Service) SearchOnline(ctx context.Context, query string, limit int) ([]productdomain.Row, error) {
	hits, err := s.source.SearchByName(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []productdomain.Row{}, nil
	}

	if _, err := s.products.Upsert(ctx, hits); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(hits))
	for _, hit := range hits {
		switch code := hit["code"].(type) {
		case string:
			codes = append(codes, code)
		case float64:
			codes = append(codes, strconv.FormatFloat(code, 'f', -1, 64))
		}
	}
	return s.products.GetByCodes(ctx, codes)
}
