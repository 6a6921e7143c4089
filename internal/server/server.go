package server

import (
	"context"
	"net/http"
	"time"

	"github.com/foodlens/offcache/internal/config"
	mealdomain "github.com/foodlens/offcache/internal/meal/domain"
	metadomain "github.com/foodlens/offcache/internal/meta/domain"
	productdomain "github.com/foodlens/offcache/internal/product/domain"
	"github.com/foodlens/offcache/internal/syncer"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(MetricsMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	db         *gorm.DB
	productSvc productdomain.Service
	mealSvc    mealdomain.Service
	metaRepo   metadomain.Repository
	syncSvc    *syncer.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	ProductSvc productdomain.Service
	MealSvc    mealdomain.Service
	MetaRepo   metadomain.Repository
	SyncSvc    *syncer.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		db:         p.DB,
		productSvc: p.ProductSvc,
		mealSvc:    p.MealSvc,
		metaRepo:   p.MetaRepo,
		syncSvc:    p.SyncSvc,
	}
}

func registerRoutes(s *Server) {
	s.RegisterAPIRoutes()
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/meta", s.GetMeta)
	api.GET("/summary", s.CatalogueSummary)

	api.GET("/products", s.ListProducts)
	api.GET("/products/search", s.SearchProducts)
	api.GET("/products/lookup", s.LookupProducts)
	api.GET("/products/:code", s.GetProduct)
	api.POST("/products/:code/refresh", s.RefreshProduct)

	api.POST("/meals", s.CreateMeal)
	api.DELETE("/meals", s.DeleteMeals)
	api.DELETE("/meals/items/:code", s.DeleteMealCode)
	api.GET("/meals/consumed", s.ListConsumed)
	api.GET("/meals/summary", s.ConsumptionSummary)

	api.POST("/sync", s.RunSync)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
