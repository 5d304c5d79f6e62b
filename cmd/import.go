package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dashboard/internal/config"
	"github.com/sells-group/lead-dashboard/internal/leads"
	"github.com/sells-group/lead-dashboard/internal/model"
	"github.com/sells-group/lead-dashboard/internal/source"
)

var importFrom string

// leadStore is a database source that accepts imported leads.
type leadStore interface {
	Migrate(ctx context.Context) error
	Insert(ctx context.Context, leads []model.Lead) (int, error)
	Close() error
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a JSON or CSV file into the configured database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		file, err := fileSource(importFrom)
		if err != nil {
			return err
		}
		snap, err := leads.Load(ctx, file)
		if err != nil {
			return eris.Wrapf(err, "read %s", importFrom)
		}

		store, err := openStore(ctx, cfg.Data)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		if err := store.Migrate(ctx); err != nil {
			return err
		}
		n, err := store.Insert(ctx, snap.All())
		if err != nil {
			return eris.Wrap(err, "import leads")
		}

		zap.L().Info("import complete",
			zap.Int("imported", n),
			zap.String("from", importFrom),
			zap.String("driver", cfg.Data.Driver),
		)
		return nil
	},
}

// fileSource picks a file reader by extension.
func fileSource(path string) (source.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return source.NewJSONFile(path), nil
	case ".csv":
		return source.NewCSVFile(path), nil
	default:
		return nil, eris.Errorf("unsupported import file %q (want .json or .csv)", path)
	}
}

func openStore(ctx context.Context, data config.DataConfig) (leadStore, error) {
	switch strings.ToLower(data.Driver) {
	case source.DriverSQLite:
		db, err := source.NewSQLite(data.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case source.DriverPostgres:
		db, err := source.NewPostgres(ctx, data.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, eris.Errorf("import needs a sqlite or postgres driver, got %q", data.Driver)
	}
}

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "path to a JSON or CSV lead file (required)")
	_ = importCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(importCmd)
}
