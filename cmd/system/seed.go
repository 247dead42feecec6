package system

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/helpdesk_backend/internal/store"
	"github.com/Alijeyrad/helpdesk_backend/pkg/database"
)

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo users, tickets and articles into the SQL store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cfg)
			defer cancel()

			drv, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer drv.Close()

			if err := store.Migrate(ctx, drv); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			err = store.Seed(ctx, store.NewSQL(drv, nil))
			switch {
			case errors.Is(err, store.ErrAlreadySeeded):
				fmt.Println("Store already seeded, nothing to do.")
			case err != nil:
				return fmt.Errorf("failed to seed: %w", err)
			default:
				fmt.Println("Demo data loaded.")
			}
			return nil
		},
	}

	return cmd
}
