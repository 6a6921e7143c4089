package product

import (
	"github.com/foodlens/offcache/internal/product/repository"
	"github.com/foodlens/offcache/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
