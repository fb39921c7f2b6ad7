package db

import (
	"context"
	"time"

	"github.com/taxops/fbrgate/internal/config"
	"github.com/taxops/fbrgate/internal/migration"
	"github.com/taxops/fbrgate/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(New),
	fx.Invoke(runMigrations),
)

// New opens the gorm handle with structured logging, tracing and DB metrics.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(logger.DefaultGormLoggerConfig()),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.Use(otelgorm.NewPlugin()); err != nil {
		log.Warn("otelgorm plugin not installed", zap.Error(err))
	}
	if err := gdb.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          cfg.DBName,
		RefreshInterval: 15,
	})); err != nil {
		log.Warn("gorm prometheus plugin not installed", zap.Error(err))
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTime) * time.Second)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return sqlDB.Close()
		},
	})

	return gdb, nil
}

func runMigrations(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.DBType != "postgres" {
		// Embedded migrations target postgres. Other dialects (sqlite in
		// tests) migrate via AutoMigrate at the call site.
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if err := migration.RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Info("database migrations applied")
	return nil
}
