package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/finbook/internal/config"
	"github.com/smallbiznis/finbook/internal/migration"
	"github.com/smallbiznis/finbook/internal/server"
	"github.com/smallbiznis/finbook/pkg/db"
	"github.com/smallbiznis/finbook/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
