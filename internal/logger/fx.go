package logger

import (
	"github.com/smallbiznis/pixelift/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewFromConfig creates a zap logger from application Config.
func NewFromConfig(lc fx.Lifecycle, appCfg config.Config) (*zap.Logger, error) {
	return New(lc, Config{
		ServiceName: appCfg.AppName,
		Environment: appCfg.Environment,
		Version:     appCfg.AppVersion,
		Level:       appCfg.LogLevel,
		Format:      appCfg.LogFormat,
		Debug:       !appCfg.IsProduction(),
	})
}

// Module wires the global zap logger for the application.
var Module = fx.Module("logger",
	fx.Provide(NewFromConfig),
)
