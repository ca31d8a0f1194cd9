package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driven/config/file"
	"github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driving/rest"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API. Dashboards and pipelines can run the same
fetches the CLI does:

  POST   /api/v1/gsc/query
  GET    /api/v1/gsc/domains
  POST   /api/v1/ga4/query
  GET    /api/v1/ga4/properties
  GET    /api/v1/cache/stats
  DELETE /api/v1/cache`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if fetchService == nil || catalogService == nil {
		return errors.New("fetch services not configured")
	}

	addr := serveAddr
	if !cmd.Flags().Changed("addr") && configStore != nil {
		if configured := configStore.GetString(configfile.KeyListenAddr); configured != "" {
			addr = configured
		}
	}

	server := rest.NewServer(fetchService, catalogService, analyticsService, resultCache)
	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
	return server.ListenAndServe(cmd.Context(), addr)
}
