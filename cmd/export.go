package main

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/export"
	"github.com/sells-group/lead-dashboard/internal/model"
)

var (
	exportFormat   string
	exportSelected string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads as CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), "read", false)
		if err != nil {
			return err
		}
		defer env.Close()

		selected := export.Subset(env.Snapshot.All(), export.ParseIDs(exportSelected))

		if exportOut == "" || exportOut == "-" {
			err = writeExport(cmd.OutOrStdout(), exportFormat, selected)
		} else {
			err = writeExportFile(exportOut, exportFormat, selected)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("format", exportFormat),
			zap.Int("leads", len(selected)),
			zap.String("out", exportOut),
		)
		return nil
	},
}

// writeExportFile writes the export to path and returns the close error.
func writeExportFile(path, format string, leads []model.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := writeExport(f, format, leads); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func writeExport(w io.Writer, format string, leads []model.Lead) error {
	switch strings.ToLower(format) {
	case "csv", "":
		if _, err := io.WriteString(w, export.CSV(leads)); err != nil {
			return eris.Wrap(err, "write csv")
		}
		return nil
	case "xlsx":
		return export.XLSX(w, leads)
	default:
		return eris.Errorf("unknown format %q (want csv or xlsx)", format)
	}
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVar(&exportSelected, "selected", "", "comma-separated lead ids (default all)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
