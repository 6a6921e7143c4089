package meal

import (
	"github.com/foodlens/offcache/internal/meal/repository"
	"github.com/foodlens/offcache/internal/meal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meal.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
