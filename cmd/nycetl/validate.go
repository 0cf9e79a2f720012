package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nycetl/internal/config"
	"nycetl/internal/dataset"
	"nycetl/internal/parser/csv"
	"nycetl/internal/pipeline"
	"nycetl/internal/schema"
)

var validateCheckHeaders bool

var validateCmd = &cobra.Command{
	Use:   "validate [dataset]...",
	Short: "Check the configuration, and optionally the extract headers",
	Long: `Validate reports every configuration finding at once. With
--check-headers it also opens each named dataset's extract (all of them when
none are named) and verifies the CSV header carries the required columns,
without touching the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if len(issues) == 0 {
			log.Info().Msg("configuration ok")
		}
		if f := config.FatalIssues(issues); len(f) > 0 {
			return fmt.Errorf("configuration has %d fatal issue(s)", len(f))
		}
		if !validateCheckHeaders {
			return nil
		}

		names := args
		if len(names) == 0 {
			names = dataset.Names()
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var failed bool
		for _, name := range names {
			d, ok := dataset.Get(name)
			if !ok {
				return fmt.Errorf("unknown dataset %q (have: %v)", name, dataset.Names())
			}
			if err := checkHeaders(ctx, cfg, d); err != nil {
				failed = true
				log.Error().Str("dataset", name).Err(err).Msg("header check failed")
				continue
			}
			log.Info().Str("dataset", name).Msg("header ok")
		}
		if failed {
			return errors.New("one or more extracts failed the header check")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateCheckHeaders, "check-headers", false,
		"open each extract and verify the required columns are present")
	rootCmd.AddCommand(validateCmd)
}

// peeker is satisfied by sources that can fetch just the leading bytes of an
// extract, sparing a full download for a header check.
type peeker interface {
	Peek(ctx context.Context, path string, n int) ([]byte, error)
}

// checkHeaders reads just enough of each extract under the dataset's path to
// confirm the header shape. Positional datasets have nothing to check beyond
// readability.
func checkHeaders(ctx context.Context, cfg *config.Config, d *schema.Dataset) error {
	src, err := newSource(extractPath(cfg, d))
	if err != nil {
		return err
	}
	paths, err := src.Resolve()
	if err != nil {
		return err
	}
	for _, p := range paths {
		r, err := openPrefix(ctx, src, p)
		if err != nil {
			return err
		}
		header, _, err := csv.ReadAll(ctx, r, csv.Options{
			Positional:      d.Positional,
			SkipUntilPrefix: d.SkipUntilPrefix,
		})
		r.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if len(d.Positional) == 0 {
			if err := csv.CheckColumns(header, d.Required); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}
	}
	return nil
}

// openPrefix opens one extract for a header check. Peekable sources only
// fetch a prefix; the trailing partial line is dropped so the parser sees
// complete rows.
func openPrefix(ctx context.Context, src pipeline.Source, path string) (io.ReadCloser, error) {
	pk, ok := src.(peeker)
	if !ok {
		return src.Open(ctx, path)
	}
	buf, err := pk.Peek(ctx, path, 256<<10)
	if err != nil {
		return nil, err
	}
	if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i+1]
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}
