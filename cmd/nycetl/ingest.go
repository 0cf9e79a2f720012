package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nycetl/internal/config"
	"nycetl/internal/dataset"
	"nycetl/internal/metrics"
	"nycetl/internal/metrics/datadog"
	"nycetl/internal/metrics/prompush"
	"nycetl/internal/parser/csv"
	"nycetl/internal/pipeline"
	"nycetl/internal/schema"
	"nycetl/internal/storage"
)

var ingestPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest <dataset>...",
	Short: "Run one or more dataset ingestions",
	Long: `Ingest reads the configured CSV extract(s) for each named dataset,
converts and validates the rows, loads them in batched transactions, and
verifies the result. Dataset names are listed by "nycetl datasets".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestPath != "" && len(args) != 1 {
			return errors.New("--path applies to a single dataset")
		}
		log := newLogger()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		issues := cfg.Validate()
		for _, i := range issues {
			if i.Severity == config.Fatal {
				log.Error().Str("field", i.Field).Msg(i.Msg)
			} else {
				log.Warn().Str("field", i.Field).Msg(i.Msg)
			}
		}
		if f := config.FatalIssues(issues); len(f) > 0 {
			return fmt.Errorf("configuration has %d fatal issue(s)", len(f))
		}

		if err := setupMetrics(cfg); err != nil {
			return err
		}
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Warn().Err(err).Msg("metrics flush failed")
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for _, name := range args {
			d, ok := dataset.Get(name)
			if !ok {
				return fmt.Errorf("unknown dataset %q (have: %v)", name, dataset.Names())
			}
			if err := runIngest(ctx, cfg, d, log); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestPath, "path", "", "override the extract path (single dataset only)")
	rootCmd.AddCommand(ingestCmd)
}

// setupMetrics installs the configured metrics backend, if any.
func setupMetrics(cfg *config.Config) error {
	switch cfg.Metrics.Backend {
	case "":
		return nil
	case "pushgateway":
		b, err := prompush.NewBackend("nycetl", cfg.Metrics.Address)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: cfg.Metrics.Address, Namespace: "nycetl."})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
	default:
		return fmt.Errorf("unknown metrics backend %q", cfg.Metrics.Backend)
	}
	return nil
}

// runIngest opens the backend for one dataset, runs the pipeline, and turns
// classified storage failures into operator guidance.
func runIngest(ctx context.Context, cfg *config.Config, d *schema.Dataset, log zerolog.Logger) error {
	repo, err := storage.New(ctx, storage.Config{
		Kind:          cfg.Storage.Kind,
		DSN:           cfg.Storage.ResolveDSN(),
		Table:         d.Table,
		Columns:       d.ColumnNames(),
		KeyColumns:    d.KeyColumns,
		UpdateColumns: d.UpdateColumns,
	})
	if err != nil {
		return describeStorageErr(err)
	}
	defer repo.Close()

	src, err := newSource(extractPath(cfg, d))
	if err != nil {
		return err
	}
	start := time.Now()
	stats, err := pipeline.Run(ctx, d, repo, src, log)
	metrics.RecordRun(d.Name, err, time.Since(start))
	if err != nil {
		return describeStorageErr(err)
	}
	log.Info().
		Int("files", stats.Files).
		Int("rows_read", stats.RowsRead).
		Int("dropped", stats.RowsDropped).
		Int("deduped", stats.RowsDeduped).
		Int64("inserted", stats.RowsInserted).
		Int("batches", stats.Batches).
		Msg("ingestion complete")
	return nil
}

// extractPath resolves the input path: the --path flag wins, then the
// per-dataset config override, then the data directory joined with the
// dataset's default file name.
func extractPath(cfg *config.Config, d *schema.Dataset) string {
	if ingestPath != "" {
		return ingestPath
	}
	if p, ok := cfg.Data.Paths[d.Name]; ok && p != "" {
		return p
	}
	return filepath.Join(cfg.Data.Dir, filepath.Base(d.SourcePath))
}

// describeStorageErr prefixes classified backend failures with the guidance
// the operator actually needs.
func describeStorageErr(err error) error {
	switch storage.KindOf(err) {
	case storage.ErrAuth:
		return fmt.Errorf("access denied: check user/password (%w)", err)
	case storage.ErrBadDatabase:
		return fmt.Errorf("database does not exist: create it or fix the config (%w)", err)
	case storage.ErrConnection:
		return fmt.Errorf("cannot reach the database server (%w)", err)
	default:
		var sm *csv.SchemaMismatchError
		if errors.As(err, &sm) {
			return fmt.Errorf("extract does not match the expected schema: %w", err)
		}
		return err
	}
}
