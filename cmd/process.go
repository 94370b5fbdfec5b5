package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/incident-cli/internal/config"
	"github.com/sells-group/incident-cli/internal/enrich"
	"github.com/sells-group/incident-cli/internal/export"
	"github.com/sells-group/incident-cli/internal/incident"
	"github.com/sells-group/incident-cli/internal/model"
	"github.com/sells-group/incident-cli/internal/resilience"
	"github.com/sells-group/incident-cli/internal/store"
	"github.com/sells-group/incident-cli/pkg/geocode"
)

var (
	processFormat string
	processLimit  int
	processDryRun bool
)

var processCmd = &cobra.Command{
	Use:   "process <source.csv> <target>",
	Short: "Convert and geocode a Gun Violence Archive export",
	Long: `Reads a Gun Violence Archive incident export, migrates it to the Incidents
schema, geocodes every row in order and writes the Incidents spreadsheet.

One progress line per row is printed to stdout. Rows that cannot be geocoded
are written with empty city, state, postal_code, lat and long.

Examples:
  # Geocode an export into CSV
  incident-cli process export.csv incidents.csv

  # Write XLSX instead
  incident-cli process export.csv incidents.xlsx

  # Check the migration without calling the geocoder
  incident-cli process export.csv preview.csv --dry-run --limit 20`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		opts := processOptions{
			Source: args[0],
			Target: args[1],
			Format: processFormat,
			Limit:  processLimit,
			DryRun: processDryRun,
		}

		run, err := runProcess(ctx, cfg, opts, newGeocoder(cfg.Geocode), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		recordRun(ctx, run)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", "", "output format: csv or xlsx (default: from the target extension, then export.format)")
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "process only the first N rows (0 = all)")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "migrate and write without geocoding")
	rootCmd.AddCommand(processCmd)
}

// processOptions are the per-invocation inputs of a process run.
type processOptions struct {
	Source string
	Target string
	Format string // explicit --format, empty for automatic
	Limit  int
	DryRun bool
}

// runProcess reads, migrates, enriches and writes one export. Progress lines
// and operator prompts go to stdout, the summary table to stderr. The
// returned Run describes the completed run.
func runProcess(ctx context.Context, c *config.Config, opts processOptions, client geocode.Client, stdout, stderr io.Writer) (*model.Run, error) {
	format, err := resolveFormat(opts.Format, opts.Target, c.Export.Format)
	if err != nil {
		return nil, err
	}

	incidents, err := loadIncidents(opts.Source)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && opts.Limit < len(incidents) {
		incidents = incidents[:opts.Limit]
	}
	zap.L().Info("process: loaded incidents",
		zap.String("source", opts.Source),
		zap.Int("rows", len(incidents)),
		zap.Bool("dry_run", opts.DryRun),
	)

	var sum *enrich.Summary
	if opts.DryRun {
		sum = dryRunSummary(len(incidents))
	} else {
		batch := enrich.NewBatch(client, stdout)
		table, s, err := batch.Run(ctx, enrich.RowsFrom(incidents))
		if err != nil {
			return nil, eris.Wrap(err, "process: enrich")
		}
		if err := table.Apply(incidents); err != nil {
			return nil, eris.Wrap(err, "process: apply enrichment")
		}
		sum = s
	}

	w := &export.Writer{
		Format:        format,
		RetryInterval: c.Export.RetryInterval(),
		Out:           stdout,
	}
	if err := w.Write(ctx, opts.Target, incidents); err != nil {
		return nil, err
	}

	writeSummary(stderr, opts.Target, sum)

	return &model.Run{
		ID:           uuid.New().String(),
		Source:       opts.Source,
		Target:       opts.Target,
		Format:       string(format),
		DryRun:       opts.DryRun,
		Rows:         sum.Total,
		Found:        sum.Found,
		NotFound:     sum.NotFound,
		UnknownState: sum.UnknownState,
		Failures:     failuresByKind(sum),
		StartedAt:    sum.StartedAt.UTC(),
		FinishedAt:   time.Now().UTC(),
	}, nil
}

// resolveFormat picks the output format: an explicit flag, then a .csv or
// .xlsx target extension, then the configured default.
func resolveFormat(flag, target, configured string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	switch strings.ToLower(filepath.Ext(target)) {
	case ".csv", ".xlsx":
		return export.FormatForPath(target), nil
	}
	return export.ParseFormat(configured)
}

func loadIncidents(path string) ([]incident.Incident, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(err, "process: input file %s doesn't exist", path)
		}
		return nil, eris.Wrapf(err, "process: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	incidents, err := incident.Load(f)
	if err != nil {
		return nil, eris.Wrapf(err, "process: load %s", path)
	}
	return incidents, nil
}

func newGeocoder(g config.GeocodeConfig) geocode.Client {
	return geocode.NewClient(
		geocode.WithBaseURL(g.BaseURL),
		geocode.WithUserAgent(g.UserAgent),
		geocode.WithEmail(g.Email),
		geocode.WithCountryCodes(g.CountryCodes),
		geocode.WithRateLimit(g.RateLimit),
		geocode.WithTimeout(g.Timeout()),
	)
}

func dryRunSummary(rows int) *enrich.Summary {
	now := time.Now()
	return &enrich.Summary{
		Total:      rows,
		Failed:     map[geocode.Kind]int{},
		StartedAt:  now,
		FinishedAt: now,
	}
}

func failuresByKind(sum *enrich.Summary) map[string]int {
	out := make(map[string]int)
	for k, n := range sum.Failed {
		if n > 0 {
			out[k.String()] = n
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// recordRun stores a completed run. Failures are logged, never returned: the
// output has already been written.
func recordRun(ctx context.Context, run *model.Run) {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = func(attempt int, err error) {
		zap.L().Warn("process: retrying run history",
			zap.String("run_id", run.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	if err := saveRun(ctx, retry, initStore, run); err != nil {
		zap.L().Warn("process: record run", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// saveRun records run in the store returned by open, retrying transient
// connection failures. A nil store means run history is disabled.
func saveRun(ctx context.Context, retry resilience.RetryConfig, open func(context.Context) (store.RunStore, error), run *model.Run) error {
	return resilience.Do(ctx, retry, func(ctx context.Context) error {
		st, err := open(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			return nil
		}
		defer st.Close() //nolint:errcheck

		if err := st.RecordRun(ctx, run); err != nil {
			return err
		}
		zap.L().Info("process: run recorded", zap.String("run_id", run.ID))
		return nil
	})
}

