package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/foodlens/offcache/internal/clock"
	"github.com/foodlens/offcache/internal/config"
	"github.com/foodlens/offcache/internal/meal"
	"github.com/foodlens/offcache/internal/meta"
	"github.com/foodlens/offcache/internal/migration"
	"github.com/foodlens/offcache/internal/offclient"
	"github.com/foodlens/offcache/internal/product"
	"github.com/foodlens/offcache/internal/server"
	"github.com/foodlens/offcache/internal/syncer"
	"github.com/foodlens/offcache/pkg/db"
	"github.com/foodlens/offcache/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		fx.Provide(config.NewSyncConfigHolder),
		log.Module,
		db.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		migration.Module,

		// Domains
		meta.Module,
		product.Module,
		meal.Module,
		offclient.Module,
		syncer.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
