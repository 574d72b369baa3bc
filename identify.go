package skygroup

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/floats"
)

// Config controls IdentifyAllGroups.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Sep is the separation threshold: points joined by single linkage at
	// distances <= Sep form a group. Same units as Metric. Must be >= 0.
	// Default: 10.
	Sep float64

	// Metric is the distance between two points. Built-in: EuclideanMetric,
	// ManhattanMetric, HaversineMetric, HaversineDegMetric. Use MetricFunc
	// to wrap a custom function. Default: EuclideanMetric.
	Metric Metric

	// BatchSize is the target number of points per spatial tile. The plane
	// is cut into ceil(sqrt(n/BatchSize))² tiles, which bounds the O(n²)
	// pairwise distance cost. Must be >= 1. Default: 2000.
	BatchSize int

	// Overlap is the padding added to each tile on every side, as a
	// fraction of the tile width and height, so that groups straddling a
	// tile edge are still found whole. Must be >= 0. Default: 0.1.
	Overlap float64

	// ConflictPolicy chooses how to reconcile a batch group whose members
	// already carry different group IDs. Default: ConflictWarn.
	ConflictPolicy ConflictPolicy

	// Logger receives batch statistics (debug), the run summary (info) and
	// conflicts (warn). The zero value discards everything.
	Logger zerolog.Logger

	// Progress, if non-nil, receives a progress bar over the tiles.
	Progress io.Writer
}

// Result contains the output of IdentifyAllGroups.
type Result struct {
	// X and Y are copies of the input coordinates in which every grouped
	// point has been moved to the mean position of its group.
	X, Y []float64

	// GroupIDs assigns each point a group ID, or Ungrouped (-1).
	GroupIDs []int

	// NumGroups is the number of distinct group IDs in GroupIDs.
	NumGroups int

	// NumGrouped is the number of points that belong to a group.
	NumGrouped int

	// Batches is the number of non-empty tiles processed.
	Batches int

	// Conflicts counts groups found in a batch whose already-grouped
	// members carried more than one group ID.
	Conflicts int

	// Elapsed is the wall time spent identifying groups.
	Elapsed time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Sep:            10,
		Metric:         EuclideanMetric{},
		BatchSize:      2000,
		Overlap:        0.1,
		ConflictPolicy: ConflictWarn,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
// Sep and Overlap are left alone since zero is meaningful for both.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 2000
	}
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = ConflictWarn
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Sep < 0 || math.IsNaN(cfg.Sep) {
		return fmt.Errorf("skygroup: Sep must be >= 0, got %f", cfg.Sep)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("skygroup: BatchSize must be >= 1, got %d", cfg.BatchSize)
	}
	if cfg.Overlap < 0 || math.IsNaN(cfg.Overlap) {
		return fmt.Errorf("skygroup: Overlap must be >= 0, got %f", cfg.Overlap)
	}
	switch cfg.ConflictPolicy {
	case ConflictWarn, ConflictUnion:
		// valid
	default:
		return fmt.Errorf("skygroup: invalid ConflictPolicy %q", cfg.ConflictPolicy)
	}
	return nil
}

// IdentifyAllGroups finds every group of co-located points in (x, y) and
// moves the members of each group to the group's centre of mass.
//
// The bounding box of the points is tiled into a square grid of padded,
// overlapping tiles. Groups are found independently in each tile and
// stitched into one global labelling, so a group seen by several tiles
// keeps a single ID. The inputs are never modified.
func IdentifyAllGroups(x, y []float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("skygroup: x and y lengths differ (%d != %d)", len(x), len(y))
	}

	log := cfg.Logger
	n := len(x)
	xs := slices.Clone(x)
	ys := slices.Clone(y)
	state := newGroupState(n, cfg.ConflictPolicy, log)

	res := &Result{X: xs, Y: ys, GroupIDs: state.ids}
	if n == 0 {
		res.X, res.Y, res.GroupIDs = []float64{}, []float64{}, []int{}
		return res, nil
	}

	grid := newTileGrid(xs, ys, cfg.BatchSize, cfg.Overlap)
	log.Info().Msgf("Identifying groups in %d x %d batches", grid.n, grid.n)

	var bar *progressbar.ProgressBar
	if cfg.Progress != nil {
		bar = progressbar.NewOptions(grid.n*grid.n,
			progressbar.OptionSetDescription("Identifying groups"),
			progressbar.OptionSetWriter(cfg.Progress),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	t0 := time.Now()
	for i := 0; i < grid.n; i++ {
		for j := 0; j < grid.n; j++ {
			bxs, bys, indices := Subregion(xs, ys, grid.tile(i, j))
			if bar != nil {
				if err := bar.Add(1); err != nil {
					return nil, fmt.Errorf("skygroup: updating progress: %w", err)
				}
			}

			if len(bxs) == 0 {
				log.Debug().Msgf("Batch(%d,%d): Skipping as no objects in batch", i, j)
				continue
			}

			local := FindGroups(bxs, bys, cfg.Sep, cfg.Metric)
			created := state.update(local, indices)
			res.Batches++

			log.Debug().Msgf("Batch(%d,%d): Number of objects = %d, Number of new groups = %d", i, j, len(bxs), created)
		}
	}

	collapse(xs, ys, state.ids)

	res.Elapsed = time.Since(t0)
	res.NumGroups = state.numGroups()
	res.Conflicts = state.conflicts
	for _, id := range state.ids {
		if id != Ungrouped {
			res.NumGrouped++
		}
	}

	log.Info().Msgf("Time taken to identify groups = %fs", res.Elapsed.Seconds())
	log.Info().Msgf("Total number of grouped objects = %d", res.NumGrouped)
	log.Info().Msgf("Total number of groups = %d", res.NumGroups)
	log.Info().Msgf("Fraction of objects that are grouped = %f", float64(res.NumGrouped)/float64(n))
	if res.NumGroups > 0 {
		log.Info().Msgf("Mean number of objects per group = %f", float64(res.NumGrouped)/float64(res.NumGroups))
	}
	if res.Conflicts > 0 {
		log.Warn().Int("conflicts", res.Conflicts).Str("policy", string(cfg.ConflictPolicy)).
			Msg("Some groups were found with inconsistent group IDs")
	}

	return res, nil
}

// tileGrid is the n x n tiling of a point set's bounding box.
type tileGrid struct {
	n          int
	xMin, yMin float64
	wx, wy     float64
	overlap    float64
}

func newTileGrid(xs, ys []float64, batchSize int, overlap float64) tileGrid {
	g := tileGrid{
		n:       int(math.Ceil(math.Sqrt(float64(len(xs)) / float64(batchSize)))),
		xMin:    floats.Min(xs),
		yMin:    floats.Min(ys),
		overlap: overlap,
	}
	g.wx = (floats.Max(xs) - g.xMin) / float64(g.n)
	g.wy = (floats.Max(ys) - g.yMin) / float64(g.n)
	// A flat extent would give empty open tiles; use a unit width instead.
	if g.wx == 0 {
		g.wx = 1
	}
	if g.wy == 0 {
		g.wy = 1
	}
	return g
}

// tile returns the padded bounds of tile (i, j).
func (g tileGrid) tile(i, j int) Bounds {
	return Bounds{
		XMin: g.xMin + float64(i)*g.wx,
		XMax: g.xMin + float64(i+1)*g.wx,
		YMin: g.yMin + float64(j)*g.wy,
		YMax: g.yMin + float64(j+1)*g.wy,
	}.Pad(g.overlap, g.overlap)
}
