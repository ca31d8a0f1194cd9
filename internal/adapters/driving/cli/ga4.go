package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitepulse-labs/sitepulse-cli/internal/core/domain"
	"github.com/sitepulse-labs/sitepulse-cli/internal/export"
)

var (
	ga4StartDate  string
	ga4EndDate    string
	ga4Dimensions string
	ga4Metrics    string
	ga4Property   string
	ga4Account    string
	ga4Hostname   string
	ga4Output     string
	ga4JSON       bool
)

var ga4Cmd = &cobra.Command{
	Use:   "ga4",
	Short: "Google Analytics 4 commands",
}

var ga4FetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a GA4 report across accessible properties",
	RunE:  runGA4Fetch,
}

var ga4PropertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List accessible GA4 properties",
	RunE:  runGA4Properties,
}

func init() {
	ga4FetchCmd.Flags().StringVar(&ga4StartDate, "start-date", "", "start of the date range (YYYY-MM-DD)")
	ga4FetchCmd.Flags().StringVar(&ga4EndDate, "end-date", "", "end of the date range, inclusive (YYYY-MM-DD)")
	ga4FetchCmd.Flags().StringVar(&ga4Dimensions, "dimensions", "", "comma-separated GA4 dimensions (default pagePath)")
	ga4FetchCmd.Flags().StringVar(&ga4Metrics, "metrics", "", "comma-separated GA4 metrics (default screenPageViews)")
	ga4FetchCmd.Flags().StringVar(&ga4Property, "property", "", "limit the report to one property ID")
	ga4FetchCmd.Flags().StringVar(&ga4Account, "account", "", "account identifier")
	ga4FetchCmd.Flags().StringVar(&ga4Hostname, "hostname", "", "restrict rows to one hostname")
	ga4FetchCmd.Flags().StringVarP(&ga4Output, "output", "o", "", "write results to a .csv or .xlsx file")
	ga4FetchCmd.Flags().BoolVar(&ga4JSON, "json", false, "output as JSON")
	cobra.CheckErr(ga4FetchCmd.MarkFlagRequired("start-date"))
	cobra.CheckErr(ga4FetchCmd.MarkFlagRequired("end-date"))

	ga4PropertiesCmd.Flags().StringVar(&ga4Account, "account", "", "account identifier")
	ga4PropertiesCmd.Flags().BoolVar(&ga4JSON, "json", false, "output as JSON")

	ga4Cmd.AddCommand(ga4FetchCmd)
	ga4Cmd.AddCommand(ga4PropertiesCmd)
	rootCmd.AddCommand(ga4Cmd)
}

func runGA4Fetch(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errors.New("analytics service not configured")
	}

	req := domain.ReportRequest{
		StartDate:      ga4StartDate,
		EndDate:        ga4EndDate,
		Dimensions:     domain.ParseDimensions(ga4Dimensions),
		Metrics:        domain.ParseDimensions(ga4Metrics),
		PropertyID:     ga4Property,
		Account:        ga4Account,
		HostnameFilter: ga4Hostname,
	}

	table, err := analyticsService.FetchReport(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("ga4 fetch failed: %w", err)
	}

	if ga4Output != "" {
		switch {
		case strings.HasSuffix(ga4Output, ".csv"):
			err = export.WriteCSV(ga4Output, table)
		case strings.HasSuffix(ga4Output, ".xlsx"):
			err = export.WriteExcel(ga4Output, table, nil)
		default:
			err = fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", ga4Output)
		}
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %d rows to %s\n", table.Len(), ga4Output)
		return nil
	}

	if ga4JSON {
		data, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal table: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%d rows, columns: %s\n", table.Len(), strings.Join(table.Columns, ", "))
	return nil
}

func runGA4Properties(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errors.New("analytics service not configured")
	}

	props, err := analyticsService.ListProperties(cmd.Context(), ga4Account)
	if err != nil {
		return fmt.Errorf("listing properties failed: %w", err)
	}

	if ga4JSON {
		data, err := json.MarshalIndent(props, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal properties: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(props) == 0 {
		cmd.Println("No accessible properties.")
		return nil
	}
	for _, p := range props {
		cmd.Printf("  %-12s %s\n", p.ID, p.DisplayName)
	}
	cmd.Printf("%d propert(ies)\n", len(props))
	return nil
}
