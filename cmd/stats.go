package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/stats"
)

var statsFormat string

// statsReport is the combined output of the stats command.
type statsReport struct {
	Stats  model.LeadStats    `json:"stats" yaml:"stats"`
	States []model.StateStats `json:"states" yaml:"states"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print collection statistics and the state breakdown",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), "read", false)
		if err != nil {
			return err
		}
		defer env.Close()

		all := env.Snapshot.All()
		report := statsReport{
			Stats:  stats.Compute(all),
			States: stats.States(all),
		}
		return writeStats(cmd.OutOrStdout(), statsFormat, report)
	},
}

func writeStats(w io.Writer, format string, r statsReport) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Total leads\t%d\n", r.Stats.TotalLeads)
		fmt.Fprintf(tw, "Total spend\t$%.0f\n", r.Stats.TotalSpend)
		fmt.Fprintf(tw, "Total reach\t%d\n", r.Stats.TotalReach)
		fmt.Fprintf(tw, "High priority\t%d\n", r.Stats.HighPriority)
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "STATE\tLEADS\tSHARE")
		for _, s := range r.States {
			fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", s.Name, s.Count, s.Percentage)
		}
		return tw.Flush()
	default:
		return eris.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "table", "output format: table, json or yaml")
	rootCmd.AddCommand(statsCmd)
}
