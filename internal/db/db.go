package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	gormprometheus "gorm.io/plugin/prometheus"

	"docvault/internal/config"
	"docvault/internal/model"
)

const (
	slowQueryThreshold   = 200 * time.Millisecond
	metricsRefreshPeriod = 15 // seconds
)

// DialectorFactory builds a GORM dialector from a DSN.
type DialectorFactory func(dsn string) gorm.Dialector

var dialectors = map[string]DialectorFactory{}

// RegisterDialector makes a driver available under the given names.
func RegisterDialector(factory DialectorFactory, names ...string) {
	for _, name := range names {
		dialectors[name] = factory
	}
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(dialectors))
	for name := range dialectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns a connected GORM DB instance for the configured driver.
func Open(ctx context.Context, cfg config.DBConfig, logger *zerolog.Logger, withMetrics bool) (*gorm.DB, error) {
	factory, ok := dialectors[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q (available: %v)", cfg.Driver, Drivers())
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	gdb, err := gorm.Open(factory(cfg.DSN), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	if withMetrics {
		if err := gdb.Use(gormprometheus.New(gormprometheus.Config{
			DBName:          cfg.Driver,
			RefreshInterval: metricsRefreshPeriod,
			StartServer:     false,
		})); err != nil {
			return nil, fmt.Errorf("register gorm metrics: %w", err)
		}
	}

	logger.Info().Str("driver", cfg.Driver).Msg("database connected")
	return gdb, nil
}

// Migrate creates or updates the schema. When reset is set the tables are
// dropped first.
func Migrate(gdb *gorm.DB, reset bool) error {
	if reset {
		// documents first: it references users
		if err := gdb.Migrator().DropTable(&model.Document{}, &model.User{}); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	if err := gdb.AutoMigrate(&model.User{}, &model.Document{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
