package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pixelift/internal/config"
	"github.com/smallbiznis/pixelift/internal/logger"
	"github.com/smallbiznis/pixelift/internal/migration"
	"github.com/smallbiznis/pixelift/internal/server"
	"github.com/smallbiznis/pixelift/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
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
