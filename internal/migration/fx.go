package migration

import (
	"github.com/smallbiznis/pixelift/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func runOnStartup(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.DBType != "postgres" {
		log.Info("skipping migrations for non-postgres database", zap.String("db_type", cfg.DBType))
		return nil
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

var Module = fx.Module("migration",
	fx.Invoke(runOnStartup),
)
