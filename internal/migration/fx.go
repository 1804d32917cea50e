package migration

import (
	"github.com/smallbiznis/finbook/internal/config"
	"github.com/smallbiznis/finbook/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(Run),
)

// Run migrates the schema and applies the bootstrap seed before the
// HTTP server starts accepting requests.
func Run(gdb *gorm.DB, cfg config.Config, log *zap.Logger) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	if err := RunMigrations(sqlDB, cfg.DBType); err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("db_type", cfg.DBType))

	if err := seed.Ensure(gdb); err != nil {
		return err
	}
	log.Info("bootstrap seed ensured")
	return nil
}
