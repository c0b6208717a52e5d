package app

import (
	"github.com/spf13/cobra"
)

func NewServeCmd(mgr Manager) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API over HTTP",
		Long: `Serve the validation API until interrupted.

  POST /v1/validate               validate {"schema", "instance", "maskValues"}
  POST /v1/schemas                compile a schema and return its id
  POST /v1/schemas/{id}/validate  validate {"instance", "maskValues"}
  GET  /v1/codes                  list the issue codes
  GET  /metrics                   Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mgr.Serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (overrides configuration)")

	return cmd
}
