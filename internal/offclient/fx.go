package offclient

import "go.uber.org/fx"

var Module = fx.Module("offclient",
	fx.Provide(New),
)
