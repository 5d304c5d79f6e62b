package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "lead-dashboard",
	Short: "Business lead dashboard and scoring service",
	Long: `Lead dashboard for scraped Facebook ad leads.

  serve    HTTP API for searching, filtering, stats, export and scoring
  stats    collection totals and the per-state breakdown
  export   CSV or XLSX export of all or selected leads
  analyze  score one lead or a batch with the configured LLM provider,
           falling back to rule-based scoring
  import   load a JSON or CSV lead file into SQLite or Postgres

Leads come from the source named by data.driver (embedded, json, csv,
sqlite or postgres). Settings are read from config.yaml and LEADS_*
environment variables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
