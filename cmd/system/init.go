package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/helpdesk_backend/pkg/database"
)

func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configured database if it is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cfg)
			defer cancel()

			created, err := database.EnsureDatabase(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if created {
				fmt.Printf("Created database %q.\n", cfg.Database.DBName)
			} else {
				fmt.Println("Database already present.")
			}
			return nil
		},
	}

	return cmd
}
