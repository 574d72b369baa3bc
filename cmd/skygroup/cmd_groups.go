package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/TrevorS/skygroup"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type groupsOptions struct {
	sep            float64
	metric         string
	batchSize      int
	overlap        float64
	unionConflicts bool
	reproject      bool
	outDir         string
	jobs           int
}

func newGroupsCmd(a *app) *cobra.Command {
	opts := groupsOptions{}
	def := skygroup.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "groups <catalog.csv>...",
		Short: "identify groups of blended objects",
		Long: `
Identifies groups of objects within --sep of one another in each catalog and
writes <name>_groups.csv to --out-dir with columns x, y and group_id. Grouped
objects are moved to the centre of their group; ungrouped objects have
group_id -1.

Catalogs with ra/dec columns can be reprojected to the equator first, where
the euclidean metric in degrees approximates angular separation.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGroups(cmd.Context(), cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.sep, "sep", def.Sep, "separation threshold, in the units of --metric")
	f.StringVar(&opts.metric, "metric", "euclidean", "distance metric (euclidean, manhattan, haversine, haversine_deg)")
	f.IntVar(&opts.batchSize, "batch-size", def.BatchSize, "target number of objects per batch")
	f.Float64Var(&opts.overlap, "overlap", def.Overlap, "batch overlap as a fraction of batch width")
	f.BoolVar(&opts.unionConflicts, "union-conflicts", false, "merge groups whose members disagree on their group ID")
	f.BoolVar(&opts.reproject, "reproject", false, "reproject ra/dec catalogs to the equator before grouping")
	f.StringVar(&opts.outDir, "out-dir", ".", "directory for output catalogs")
	f.IntVar(&opts.jobs, "jobs", runtime.NumCPU(), "number of catalogs processed at once")

	return cmd
}

func (a *app) runGroups(ctx context.Context, cmd *cobra.Command, opts groupsOptions, paths []string) error {
	metric, err := skygroup.MetricByName(opts.metric)
	if err != nil {
		return err
	}
	if opts.jobs < 1 {
		return fmt.Errorf("--jobs must be >= 1, got %d", opts.jobs)
	}

	cfg := skygroup.DefaultConfig()
	cfg.Sep = opts.sep
	cfg.Metric = metric
	cfg.BatchSize = opts.batchSize
	cfg.Overlap = opts.overlap
	if opts.unionConflicts {
		cfg.ConflictPolicy = skygroup.ConflictUnion
	}

	stderr := cmd.ErrOrStderr()
	var bar *progressbar.ProgressBar
	if isTerminal(stderr) {
		if len(paths) == 1 {
			if showProgress(a.log.GetLevel(), zerolog.DebugLevel) {
				cfg.Progress = stderr
			}
		} else if showProgress(a.log.GetLevel(), zerolog.InfoLevel) {
			bar = progressbar.NewOptions(len(paths),
				progressbar.OptionSetDescription("Grouping catalogs"),
				progressbar.OptionSetWriter(stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.groupCatalog(path, cfg, opts); err != nil {
				return fmt.Errorf("grouping %s: %w", path, err)
			}
			if bar != nil {
				return bar.Add(1)
			}
			return nil
		})
	}
	return g.Wait()
}

// showProgress reports whether a progress bar can share stderr with a logger
// at level, given that each finished item is logged at itemLevel.
func showProgress(level, itemLevel zerolog.Level) bool {
	return level > itemLevel
}

func (a *app) groupCatalog(path string, cfg skygroup.Config, opts groupsOptions) error {
	log := a.log.With().Str("catalog", filepath.Base(path)).Logger()
	cfg.Logger = log

	cat, err := readCatalogFile(path)
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}

	x, y := cat.X, cat.Y
	header := [3]string{cat.Columns[0], cat.Columns[1], "group_id"}
	if opts.reproject {
		if !cat.Sky() {
			return fmt.Errorf("--reproject needs ra/dec columns, got %s/%s", cat.Columns[0], cat.Columns[1])
		}
		x, y = skygroup.ReprojectToEquator(x, y)
		header[0], header[1] = "x", "y"
	}

	res, err := skygroup.IdentifyAllGroups(x, y, cfg)
	if err != nil {
		return err
	}

	out := filepath.Join(opts.outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"_groups.csv")
	if err := writeLabelledFile(out, header, res.X, res.Y, res.GroupIDs); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	log.Info().
		Int("objects", len(x)).
		Int("groups", res.NumGroups).
		Int("grouped", res.NumGrouped).
		Int("conflicts", res.Conflicts).
		Dur("elapsed", res.Elapsed).
		Str("output", out).
		Msg("Catalog grouped")
	return nil
}
