package meta

import (
	"github.com/foodlens/offcache/internal/meta/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("meta",
	fx.Provide(repository.Provide),
)
