package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/db"
	"docvault/internal/logger"
	"docvault/internal/repository"
	"docvault/internal/service"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Create the administrator account if it does not exist",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file or directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, _, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, cfg.Server.Debug)

	if cfg.Seed.AdminPassword == "" {
		return errors.New("seed.admin_password is required (DOCVAULT_SEED_ADMIN_PASSWORD)")
	}

	gdb, err := db.Open(ctx, cfg.DB, &log, false)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := db.Migrate(gdb, false); err != nil {
		return err
	}

	users := service.NewUserService(repository.NewUserRepository(gdb), auth.NewBcryptHasher(auth.DefaultCost), nil)
	user, created, err := users.EnsureAdmin(ctx, service.NewUser{
		Username: cfg.Seed.AdminUsername,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	})
	if err != nil {
		return err
	}

	if created {
		log.Info().Uint("id", user.ID).Str("username", user.Username).Msg("administrator created")
	} else {
		log.Info().Uint("id", user.ID).Str("username", user.Username).Msg("administrator already present, nothing to do")
	}
	return nil
}
