package http

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/helpdesk_backend/config"
	httpapi "github.com/Alijeyrad/helpdesk_backend/internal/api/http"
	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/router"
	"github.com/Alijeyrad/helpdesk_backend/internal/app"
	"github.com/Alijeyrad/helpdesk_backend/pkg/observability"
)

// NewRoutesCommand resolves the same dependency graph as start, without
// listening, and prints the mounted routes.
func NewRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the API routes the server would mount",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return err
			}

			var api *fiber.App
			fxApp := fx.New(
				fx.Supply(cfg),
				app.InfraModule,
				app.ServiceModule,
				router.Module,
				fx.Provide(func(r *router.Router, otel *observability.Provider) *fiber.App {
					return httpapi.NewApp(cfg, r, otel)
				}),
				fx.Populate(&api),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)
			if err := fxApp.Err(); err != nil {
				return err
			}

			routes := api.GetRoutes(true)
			sort.Slice(routes, func(i, j int) bool {
				if routes[i].Path != routes[j].Path {
					return routes[i].Path < routes[j].Path
				}
				return routes[i].Method < routes[j].Method
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, r := range routes {
				fmt.Fprintf(w, "%s\t%s\n", r.Method, r.Path)
			}
			return w.Flush()
		},
	}
}
