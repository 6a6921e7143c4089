package syncer

import (
	"github.com/foodlens/offcache/internal/offclient"
	"go.uber.org/fx"
)

var Module = fx.Module("syncer",
	fx.Provide(func(c *offclient.Client) Source { return c }),
	fx.Provide(New),
)
