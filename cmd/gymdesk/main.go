package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/migration"
	"github.com/smallbiznis/gymdesk/internal/observability"
	"github.com/smallbiznis/gymdesk/internal/server"
	"github.com/smallbiznis/gymdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Functional Domains
		server.Module,
		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
