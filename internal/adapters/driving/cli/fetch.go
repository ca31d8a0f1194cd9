package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/export"
)

var (
	fetchStartDate  string
	fetchEndDate    string
	fetchSearchType string
	fetchDimensions string
	fetchAccount    string
	fetchDomain     string
	fetchWait       int
	fetchRetries    int
	fetchDelay      int
	fetchOutput     string
	fetchJSON       bool
	fetchQuiet      bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch search analytics across all accessible sites",
	Long: `Fetches Search Console search analytics for every site the account
can access (optionally narrowed to one domain), retries transient failures
per site, and aggregates everything into one table.

Examples:
  # Last month of page-level data for every site
  sitepulse fetch --start-date 2026-07-01 --end-date 2026-07-31

  # One domain, four dimensions, written to a spreadsheet
  sitepulse fetch --start-date 2026-07-01 --end-date 2026-07-31 \
    --domain example.com --dimensions page,query,country,device \
    --output report.xlsx`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchStartDate, "start-date", "", "start of the date range (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchEndDate, "end-date", "", "end of the date range, inclusive (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchSearchType, "search-type", domain.SearchTypeWeb, "web, image or video")
	fetchCmd.Flags().StringVar(&fetchDimensions, "dimensions", "page", "comma-separated dimensions")
	fetchCmd.Flags().StringVar(&fetchAccount, "account", "", "account identifier, or a file listing one per line")
	fetchCmd.Flags().StringVar(&fetchDomain, "domain", "", "restrict the run to one domain")
	fetchCmd.Flags().IntVar(&fetchWait, "wait", 0, "seconds to pause before each site query")
	fetchCmd.Flags().IntVar(&fetchRetries, "max-retries", 0, "retry attempts per site (0 = default)")
	fetchCmd.Flags().IntVar(&fetchDelay, "retry-delay", 0, "base retry delay in seconds (0 = default)")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "write results to a .csv or .xlsx file")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print the full result as JSON")
	fetchCmd.Flags().BoolVarP(&fetchQuiet, "quiet", "q", false, "suppress per-site progress output")
	cobra.CheckErr(fetchCmd.MarkFlagRequired("start-date"))
	cobra.CheckErr(fetchCmd.MarkFlagRequired("end-date"))
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if fetchService == nil {
		return errors.New("fetch service not configured")
	}

	req := domain.QueryRequest{
		StartDate:   fetchStartDate,
		EndDate:     fetchEndDate,
		SearchType:  fetchSearchType,
		Dimensions:  domain.ParseDimensions(fetchDimensions),
		Account:     fetchAccount,
		Filter:      domain.NewDomainFilter(fetchDomain),
		WaitSeconds: fetchWait,
		MaxRetries:  fetchRetries,
		RetryDelay:  time.Duration(fetchDelay) * time.Second,
	}

	var progress domain.ProgressFunc
	if !fetchQuiet {
		progress = func(ev domain.ProgressEvent) error {
			switch ev.Event {
			case domain.EventSiteFinished:
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", ev.Current, ev.Total, ev.Message)
			case domain.EventRunStarted, domain.EventRunFinished:
				fmt.Fprintln(cmd.ErrOrStderr(), ev.Message)
			}
			return nil
		}
	}

	result, err := fetchService.Fetch(cmd.Context(), req, progress)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if fetchOutput != "" {
		if err := writeOutputFile(fetchOutput, result.Table, req); err != nil {
			return err
		}
		cmd.Printf("Wrote %d rows to %s\n", result.Table.Len(), fetchOutput)
		return outputSiteSummary(cmd, result)
	}

	if fetchJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputFetchSummary(cmd, result)
}

func writeOutputFile(path string, table domain.Table, req domain.QueryRequest) error {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return export.WriteCSV(path, table)
	case strings.HasSuffix(path, ".xlsx"):
		return export.WriteExcel(path, table, export.QueryOptions(req))
	default:
		return fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", path)
	}
}

func outputFetchSummary(cmd *cobra.Command, result domain.FetchResult) error {
	cmd.Printf("Run %s: %d rows from %d/%d site(s)\n",
		result.RunID, result.Table.Len(), result.Succeeded(), len(result.Sites))
	return outputSiteSummary(cmd, result)
}

func outputSiteSummary(cmd *cobra.Command, result domain.FetchResult) error {
	for _, site := range result.Sites {
		if site.Error == "" {
			cmd.Printf("  %-10s %s (%d rows)\n", site.State, site.SiteURL, site.Rows)
		} else {
			cmd.Printf("  %-10s %s: %s\n", site.State, site.SiteURL, site.Error)
		}
	}
	return nil
}
