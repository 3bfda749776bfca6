package main

import (
	"context"
	"io"
	"os"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ombuds/enrichment-engine/internal/registry"
)

var (
	importCSVPath   string
	importDelimiter string
	importBatchSize int
)

var importCmd = &cobra.Command{
	Use:   "import <processos|assistidos>",
	Short: "Import the proceeding or client registry from a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kind, err := registry.ParseKind(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrap(err, "open csv")
		}
		defer f.Close() //nolint:errcheck

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := runImport(ctx, st, kind, f)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), outputFormat, stats)
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	importCmd.Flags().StringVar(&importDelimiter, "delimiter", ",", "field delimiter")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 1000, "rows per upsert")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}

func runImport(ctx context.Context, st registry.Upserter, kind registry.Kind, r io.Reader) (*registry.Stats, error) {
	delim, size := utf8.DecodeRuneInString(importDelimiter)
	if size == 0 || size != len(importDelimiter) {
		return nil, eris.Errorf("delimiter must be a single character, got %q", importDelimiter)
	}

	stats, err := registry.Import(ctx, st, kind, r, registry.Options{
		BatchSize: importBatchSize,
		CSV:       registry.CSVOptions{Delimiter: delim, LazyQuotes: true},
	})
	if err != nil {
		return nil, eris.Wrap(err, "import csv")
	}

	zap.L().Info("import complete",
		zap.String("registry", string(kind)),
		zap.String("csv", importCSVPath),
		zap.Int64("upserted", stats.Upserted),
	)
	return stats, nil
}
