// sentry is the command-line interface for the threat-intelligence
// service: run ad-hoc agent queries and inspect the alert history
// without starting the dashboard.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/agent"
	"github.com/threatsentry/threatsentry/internal/config"
	"github.com/threatsentry/threatsentry/internal/history"
	"github.com/threatsentry/threatsentry/internal/intel"
	"github.com/threatsentry/threatsentry/internal/tools"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentry",
	Short: "Threat intelligence agent CLI",
	Long: `sentry runs ad-hoc threat-intelligence queries through the agent
(IP reputation, geolocation, malware hashes, threat scoring) and browses
the triaged alert history.`,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── query ────────────────────────────────────────────────────────────────

var queryStrategy string

var queryCmd = &cobra.Command{
	Use:   "query <ip | hash | question>",
	Short: "Run a one-shot agent query",
	Long: `Query sends a free-text question to the agent, which selects and
invokes the threat-intelligence tools to answer it:

  sentry query 77.246.107.91
  sentry query --strategy plan-execute "analyze threat level of 1.2.3.4"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryStrategy, "strategy", "react", "Agent strategy: react or plan-execute")
}

func runQuery(cmd *cobra.Command, args []string) error {
	strategy, err := agent.ParseStrategy(queryStrategy)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	geo := intel.NewGeoClient(cfg.IPInfoKey)
	vt := intel.NewVTClient(cfg.VirusTotalKey)

	factory, err := agent.NewFactory(ctx, cfg, tools.All(geo, vt, vt), zap.NewNop())
	if err != nil {
		return err
	}
	a, err := factory.New(strategy)
	if err != nil {
		return err
	}

	input := args[0]
	for _, arg := range args[1:] {
		input += " " + arg
	}

	result, err := a.Invoke(ctx, input)
	if err != nil {
		// Agent failures are reported as an error object, matching the
		// dashboard's behavior.
		out, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// ── history ──────────────────────────────────────────────────────────────

var (
	historyLimit int
	historyPath  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent triaged alerts",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum entries to show")
	historyCmd.Flags().StringVar(&historyPath, "path", config.DefaultHistoryPath, "Alert history file")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(historyPath); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "no alerts have been recorded yet")
		return nil
	}

	store, err := history.NewFileStore(historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no alerts have been recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSEVERITY\tTRIAGE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Alert.ID, e.Alert.Type, e.Alert.Severity, e.Triage)
	}
	return w.Flush()
}

// ── version ──────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sentry version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "sentry", version)
	},
}
