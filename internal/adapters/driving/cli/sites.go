package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sitesAccount string
	sitesNoCache bool
	sitesJSON    bool
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List accessible Search Console properties",
	Long: `Lists every Search Console property the configured accounts can
access, with its canonical domain. Listings are cached briefly; use
--no-cache to force a fresh call.`,
	RunE: runSites,
}

func init() {
	sitesCmd.Flags().StringVar(&sitesAccount, "account", "", "account identifier, or a file listing one per line")
	sitesCmd.Flags().BoolVar(&sitesNoCache, "no-cache", false, "bypass the listing cache")
	sitesCmd.Flags().BoolVar(&sitesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sitesCmd)
}

func runSites(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errors.New("site catalog not configured")
	}

	sites, err := catalogService.ListSites(cmd.Context(), sitesAccount, !sitesNoCache)
	if err != nil {
		return fmt.Errorf("listing sites failed: %w", err)
	}

	if sitesJSON {
		data, err := json.MarshalIndent(sites, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sites: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(sites) == 0 {
		cmd.Println("No accessible sites.")
		return nil
	}

	for _, s := range sites {
		if s.Account != "" {
			cmd.Printf("  %-40s %-25s %s\n", s.SiteURL, s.Domain, s.Account)
		} else {
			cmd.Printf("  %-40s %s\n", s.SiteURL, s.Domain)
		}
	}
	cmd.Printf("%d site(s)\n", len(sites))
	return nil
}
