package http

import "github.com/spf13/cobra"

func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Run or inspect the helpdesk HTTP API",
	}

	cmd.AddCommand(NewStartCommand())
	cmd.AddCommand(NewRoutesCommand())

	return cmd
}
