package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/helpdesk_backend/config"
	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the helpdesk tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cfg)
			defer cancel()

			fmt.Println("Running migrations.")
			if err := migrate(ctx, cfg); err != nil {
				return err
			}

			// Load the policy set once so a broken model or CSV fails here
			// rather than at server start.
			slog.Info("checking authorization policies")
			if _, err := authorize.New(ctx, authorize.FromCentralConfig(cfg.Authorization), slog.Default()); err != nil {
				return fmt.Errorf("failed to load authorization policies: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}

func migrate(ctx context.Context, cfg *config.Config) error {
	drv, err := database.NewDriver(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer drv.Close()

	if err := store.Migrate(ctx, drv); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

func commandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
