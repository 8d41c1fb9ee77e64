package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"shieldboard/internal/domain"
	"shieldboard/internal/infrastructure"
	"shieldboard/internal/presenter"
	"shieldboard/internal/usecase"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	snapFilters domain.Filters
	snapAPIURL  string
	snapJSON    bool
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch one dashboard snapshot and print the key metrics",
	Example: `  shieldboard snapshot --api-url https://dash.example.com --plan pro
  shieldboard snapshot --from 2024-01-01 --subscription active --json`,
	RunE: runSnapshot,
}

func init() {
	defaults := domain.DefaultFilters()
	f := snapshotCmd.Flags()
	f.StringVar(&snapFilters.From, "from", "", "inclusive start date (YYYY-MM-DD)")
	f.StringVar(&snapFilters.To, "to", "", "inclusive end date (YYYY-MM-DD)")
	f.StringVar(&snapFilters.Plan, "plan", defaults.Plan, "all | free | pro")
	f.StringVar(&snapFilters.Provider, "provider", defaults.Provider, "all | google | local")
	f.StringVar(&snapFilters.Status, "status", defaults.Status, "status (not sent to the backend)")
	f.StringVar(&snapFilters.Subscription, "subscription", defaults.Subscription, "all | trialing | incomplete | active | canceled")
	f.StringVar(&snapAPIURL, "api-url", "", "API base URL (overrides API_URL)")
	f.BoolVar(&snapJSON, "json", false, "print the derived view as JSON")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapAPIURL != "" {
		cfg.External.APIURL = snapAPIURL
	}

	// stdout carries the report
	log := logger.NewWithWriter(cfg.Logging.Level, os.Stderr)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	client := infrastructure.NewHTTPClient(cfg.APIBase(), "", cfg.Dashboard.RequestTimeout, cfg.Dashboard.RateLimitPerSecond, log, m)
	dashboard := usecase.NewDashboardService(client, infrastructure.NewSnapshotStore(true, log), log, m)

	if err := dashboard.SetDraft(snapFilters); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	dashboard.Apply(ctx)

	if err := dashboard.Load(ctx, usecase.TriggerManual); err != nil {
		return fmt.Errorf("%w (%s)", err, client.DashboardURL(dashboard.Applied()))
	}

	state := dashboard.State(ctx)
	view := presenter.Build(state.Snapshot, presenter.Options{
		RecentLimit: cfg.Dashboard.RecentSignupsLimit,
		DetailLimit: cfg.Dashboard.DetailSignupsLimit,
		Now:         time.Now(),
	})

	if snapJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return printView(cmd.OutOrStdout(), view, state.Applied)
}

func printView(out io.Writer, view presenter.View, applied domain.Filters) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Last synced\t%s\n", view.LastSynced)
	if q := applied.QueryString(); q != "" {
		fmt.Fprintf(w, "Filters\t%s\n", q)
	}
	fmt.Fprintln(w)

	for _, p := range view.Summary {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Label, p.Value, p.Sub)
	}
	fmt.Fprintln(w)

	for _, c := range view.Cards {
		line := c.Sub
		if c.Trend != "" {
			line += " · " + c.Trend
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Title, c.Value, line)
	}

	if len(view.RecentSignups) > 0 {
		fmt.Fprintln(w)
		for _, s := range view.RecentSignups {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Initials, s.Name, s.Date, s.Plan)
		}
	}

	return w.Flush()
}
