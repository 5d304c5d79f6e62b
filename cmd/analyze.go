package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-dashboard/internal/export"
)

var (
	analyzeID   int
	analyzeBulk bool
	analyzeIDs  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score one lead or a batch of leads and print the analysis",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !analyzeBulk && analyzeID == 0 {
			return eris.New("either --id or --bulk is required")
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, "analyze", true)
		if err != nil {
			return err
		}
		defer env.Close()

		if analyzeBulk {
			leads := env.Snapshot.All()
			if ids := export.ParseIDs(analyzeIDs); len(ids) > 0 {
				leads = env.Snapshot.Subset(ids)
			}
			return writeJSON(cmd.OutOrStdout(), env.Analyzer.AnalyzeBulk(ctx, leads))
		}

		lead, ok := env.Snapshot.Get(analyzeID)
		if !ok {
			return eris.Errorf("lead %d not found", analyzeID)
		}
		return writeJSON(cmd.OutOrStdout(), env.Analyzer.AnalyzeLead(ctx, lead))
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeID, "id", 0, "lead id to analyze")
	analyzeCmd.Flags().BoolVar(&analyzeBulk, "bulk", false, "analyze many leads")
	analyzeCmd.Flags().StringVar(&analyzeIDs, "ids", "", "comma-separated lead ids for --bulk (default all)")
	rootCmd.AddCommand(analyzeCmd)
}
