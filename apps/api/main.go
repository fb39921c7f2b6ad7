package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/cache"
	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/observability"
	"github.com/taxops/fbrgate/internal/seed"
	"github.com/taxops/fbrgate/internal/server"
	"github.com/taxops/fbrgate/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		cache.Module,
		db.Module,
		seed.Module,

		// HTTP surface. server.Module pulls in every feature module
		// (auth, tenant, buyer, product, ratetable, invoice, gateway).
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
