// Package cli implements the sitepulse command tree. Commands are thin: they
// parse flags, call the injected core services and render results. All fetch
// semantics live in internal/core.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driving"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// Injected services. Set once by SetServices before Execute.
var (
	fetchService     driving.Fetcher
	catalogService   driving.SiteCatalog
	analyticsService driving.Analytics
	resultCache      driven.ResultCache
	configStore      driven.ConfigStore

	version = "dev"
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "sitepulse",
	Short: "Bulk Search Console and Analytics data fetcher",
	Long: `sitepulse pulls Google Search Console search analytics and Google
Analytics 4 reports across every property your accounts can access, in one
run, into one table.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging to stderr")
}

// Services bundles everything the command tree needs.
type Services struct {
	Fetcher   driving.Fetcher
	Catalog   driving.SiteCatalog
	Analytics driving.Analytics
	Cache     driven.ResultCache
	Config    driven.ConfigStore
}

// SetServices injects the core services. Must be called before Execute.
func SetServices(s Services) {
	fetchService = s.Fetcher
	catalogService = s.Catalog
	analyticsService = s.Analytics
	resultCache = s.Cache
	configStore = s.Config
}

// SetVersion records the build version shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
