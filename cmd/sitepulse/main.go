// Command sitepulse is the entry point: it wires the adapters to the core
// services and hands control to the command tree.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driven/auth"
	configfile "github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driven/config/file"
	"github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driven/storage/sqlite"
	"github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driving/cli"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/services"
	"github.com/sitepulse-labs/sitepulse-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	secretsDir := cfg.GetString(configfile.KeySecretsDir)
	if secretsDir == "" {
		secretsDir = "."
	}
	factory := auth.NewFactory(secretsDir)

	catalog := services.NewCatalog(factory, services.NewSiteCache(0, nil))
	executor := services.NewExecutor(0)
	fetcher := services.NewFetcher(catalog, factory, executor, cfg.GetInt(configfile.KeyConcurrency))
	analytics := services.NewAnalytics(factory, 0)

	svcs := cli.Services{
		Fetcher:   fetcher,
		Catalog:   catalog,
		Analytics: analytics,
		Config:    cfg,
	}

	// The result cache is optional; a broken cache dir should not take the
	// whole tool down.
	cache, err := sqlite.NewCache(cfg.GetString(configfile.KeyCacheDir))
	if err != nil {
		logger.Warn("Result cache unavailable: %v", err)
	} else {
		defer cache.Close()
		svcs.Cache = cache
		ttl := time.Duration(cfg.GetInt(configfile.KeyCacheTTLHours)) * time.Hour
		svcs.Fetcher = services.NewCachedFetcher(fetcher, cache, ttl)
	}

	cli.SetVersion(version)
	cli.SetServices(svcs)
	return cli.Execute()
}
