package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"docvault/docs"
	"docvault/internal/auth"
	"docvault/internal/cache"
	"docvault/internal/config"
	"docvault/internal/db"
	"docvault/internal/handler"
	"docvault/internal/logger"
	"docvault/internal/metrics"
	"docvault/internal/repository"
	"docvault/internal/router"
	"docvault/internal/service"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "docvault",
		Short:         "Document vault HTTP server",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file or directory containing config.{yaml,json,toml}")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	var reset bool
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), configPath, reset)
		},
	}
	migrate.Flags().BoolVar(&reset, "reset", false, "drop all tables before migrating")

	show := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, v, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if file := v.ConfigFileUsed(); file != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "config file: %s\n", file)
			}
			redacted := *cfg
			if redacted.Redis.Password != "" {
				redacted.Redis.Password = "***"
			}
			if redacted.Seed.AdminPassword != "" {
				redacted.Seed.AdminPassword = "***"
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(redacted)
		},
	}

	root.AddCommand(serve, migrate, show)
	return root
}

func runServe(parent context.Context, configPath string) error {
	cfg, v, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, cfg.Server.Debug)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DB, &log, cfg.Metrics.Enabled)
	if err != nil {
		return err
	}
	defer closeDB(gdb, log)

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(gdb, cfg.DB.Reset); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if cacheClient != nil {
		if err := cacheClient.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, user lookups go to the database")
		}
		defer cacheClient.Close()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		if !cfg.Metrics.Runtime {
			prometheus.Unregister(collectors.NewGoCollector())
			prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		m, err = metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, cfg.Metrics.Runtime)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	hasher := auth.NewBcryptHasher(auth.DefaultCost)
	userRepo := repository.NewUserRepository(gdb)
	documentRepo := repository.NewDocumentRepository(gdb)

	userService := service.NewUserService(userRepo, hasher, cacheClient)
	authService := service.NewAuthService(userRepo, hasher)
	documentService := service.NewDocumentService(documentRepo, userRepo)

	docs.SwaggerInfo.Host = cfg.Swagger.Host

	e := router.New(cfg, log, m, router.Handlers{
		Users:     handler.NewUserHandler(userService),
		Auth:      handler.NewAuthHandler(authService),
		Documents: handler.NewDocumentHandler(documentService),
		Health:    handler.NewHealthHandler(gdb, cacheClient),
	})

	if cfg.Server.ReloadConfig {
		config.Watch(v, func(next *config.Config) {
			logger.SetLevel(next.Log.Level)
			log.Info().Str("level", next.Log.Level).Msg("config reloaded")
		})
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("http server listening")
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func runMigrate(ctx context.Context, configPath string, reset bool) error {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, cfg.Server.Debug)

	gdb, err := db.Open(ctx, cfg.DB, &log, false)
	if err != nil {
		return err
	}
	defer closeDB(gdb, log)

	if err := db.Migrate(gdb, reset || cfg.DB.Reset); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Bool("reset", reset || cfg.DB.Reset).Msg("schema up to date")
	return nil
}

func closeDB(gdb *gorm.DB, log zerolog.Logger) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}
