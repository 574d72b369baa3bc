package skygroup

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

// gridPoints returns an n x n grid of points with unit spacing.
func gridPoints(n int) (x, y []float64) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x = append(x, float64(i))
			y = append(y, float64(j))
		}
	}
	return x, y
}

func TestIdentifyAllGroups_Grid(t *testing.T) {
	x, y := gridPoints(64)

	tests := []struct {
		name       string
		sep        float64
		wantGroups int
	}{
		{"spacing above sep", 0.9, 0},
		{"spacing within sep", 1.1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Sep = tt.sep
			res, err := IdentifyAllGroups(x, y, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if res.NumGroups != tt.wantGroups {
				t.Errorf("NumGroups = %d, want %d", res.NumGroups, tt.wantGroups)
			}
			if res.Conflicts != 0 {
				t.Errorf("Conflicts = %d, want 0", res.Conflicts)
			}
			if res.Batches != 4 {
				t.Errorf("Batches = %d, want 4 (2 x 2 tiles)", res.Batches)
			}
			if tt.wantGroups == 1 && res.NumGrouped != len(x) {
				t.Errorf("NumGrouped = %d, want %d", res.NumGrouped, len(x))
			}
		})
	}
}

func TestIdentifyAllGroups_FiveGroupsInGrid(t *testing.T) {
	x, y := gridPoints(64)
	// Add a close neighbour to five grid points spread over every tile.
	targets := [][2]float64{{5, 5}, {5, 50}, {50, 5}, {50, 50}, {31, 31}}
	for _, p := range targets {
		x = append(x, p[0]+0.3)
		y = append(y, p[1])
	}

	cfg := DefaultConfig()
	cfg.Sep = 0.5
	res, err := IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.NumGroups != 5 {
		t.Errorf("NumGroups = %d, want 5", res.NumGroups)
	}
	if res.NumGrouped != 10 {
		t.Errorf("NumGrouped = %d, want 10", res.NumGrouped)
	}
	for k, p := range targets {
		i := int(p[0])*64 + int(p[1])
		j := 64*64 + k
		if res.GroupIDs[i] == Ungrouped || res.GroupIDs[i] != res.GroupIDs[j] {
			t.Errorf("target %v: ids %d and %d should match", p, res.GroupIDs[i], res.GroupIDs[j])
		}
		if !almostEqual(res.X[i], p[0]+0.15, 1e-12) || res.X[i] != res.X[j] {
			t.Errorf("target %v: collapsed x = %v and %v, want %v", p, res.X[i], res.X[j], p[0]+0.15)
		}
	}
}

func TestIdentifyAllGroups_CollapsesToCentroid(t *testing.T) {
	x := []float64{0, 0.1, 10, 10.1, 50}
	y := []float64{0, 0, 10, 10, 50}

	cfg := DefaultConfig()
	cfg.Sep = 1
	res, err := IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]int{0, 0, 1, 1, Ungrouped}, res.GroupIDs); diff != "" {
		t.Errorf("GroupIDs mismatch (-want +got):\n%s", diff)
	}
	wantX := []float64{0.05, 0.05, 10.05, 10.05, 50}
	wantY := []float64{0, 0, 10, 10, 50}
	for i := range wantX {
		if !almostEqual(res.X[i], wantX[i], 1e-12) || !almostEqual(res.Y[i], wantY[i], 1e-12) {
			t.Errorf("point %d = (%v, %v), want (%v, %v)", i, res.X[i], res.Y[i], wantX[i], wantY[i])
		}
	}
	if res.NumGroups != 2 || res.NumGrouped != 4 || res.Batches != 1 {
		t.Errorf("got %d groups, %d grouped, %d batches; want 2, 4, 1", res.NumGroups, res.NumGrouped, res.Batches)
	}
}

func TestIdentifyAllGroups_GroupAcrossTileEdge(t *testing.T) {
	// BatchSize 1 gives a 2 x 2 grid with the tile edge at x = 5. The pair
	// straddles it.
	x := []float64{0, 10, 4.95, 5.05}
	y := []float64{0, 10, 2, 2}

	cfg := DefaultConfig()
	cfg.Sep = 1
	cfg.BatchSize = 1

	res, err := IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{Ungrouped, Ungrouped, 0, 0}, res.GroupIDs); diff != "" {
		t.Errorf("with overlap: GroupIDs mismatch (-want +got):\n%s", diff)
	}
	if !almostEqual(res.X[2], 5, 1e-12) || !almostEqual(res.X[3], 5, 1e-12) {
		t.Errorf("pair not collapsed to x=5: %v, %v", res.X[2], res.X[3])
	}

	// Without overlap each half of the pair sits in a different tile.
	cfg.Overlap = 0
	res, err = IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.NumGroups != 0 {
		t.Errorf("without overlap: NumGroups = %d, want 0", res.NumGroups)
	}
}

func TestIdentifyAllGroups_ChainOnFlatLine(t *testing.T) {
	// All points share y, so the tile height falls back to 1.
	n := 201
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 0.5 * float64(i)
	}

	cfg := DefaultConfig()
	cfg.Sep = 0.6
	cfg.BatchSize = 10

	res, err := IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.NumGroups != 1 || res.NumGrouped != n {
		t.Errorf("got %d groups with %d members, want 1 with %d", res.NumGroups, res.NumGrouped, n)
	}
	if res.Batches != 5 {
		t.Errorf("Batches = %d, want 5", res.Batches)
	}
	if res.Conflicts != 0 {
		t.Errorf("Conflicts = %d, want 0", res.Conflicts)
	}
	for i := range res.X {
		if !almostEqual(res.X[i], 50, 1e-9) {
			t.Fatalf("point %d collapsed to %v, want 50", i, res.X[i])
		}
	}
}

func TestIdentifyAllGroups_DoesNotModifyInput(t *testing.T) {
	x := []float64{0, 0.1, 3}
	y := []float64{0, 0, 3}
	xc, yc := slices.Clone(x), slices.Clone(y)

	cfg := DefaultConfig()
	cfg.Sep = 1
	if _, err := IdentifyAllGroups(x, y, cfg); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(x, xc) || !slices.Equal(y, yc) {
		t.Error("input slices were modified")
	}
}

func TestIdentifyAllGroups_Empty(t *testing.T) {
	res, err := IdentifyAllGroups(nil, nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.X) != 0 || len(res.Y) != 0 || len(res.GroupIDs) != 0 || res.NumGroups != 0 {
		t.Errorf("expected an empty result, got %+v", res)
	}
}

func TestIdentifyAllGroups_ZeroSep(t *testing.T) {
	// Sep 0 still groups exact duplicates.
	x := []float64{1, 2, 1}
	y := []float64{1, 2, 1}
	cfg := DefaultConfig()
	cfg.Sep = 0
	res, err := IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, Ungrouped, 0}, res.GroupIDs); diff != "" {
		t.Errorf("GroupIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentifyAllGroups_Errors(t *testing.T) {
	tests := []struct {
		name   string
		x, y   []float64
		modify func(*Config)
		want   string
	}{
		{"negative sep", nil, nil, func(c *Config) { c.Sep = -1 }, "Sep"},
		{"NaN sep", nil, nil, func(c *Config) { c.Sep = math.NaN() }, "Sep"},
		{"negative batch size", nil, nil, func(c *Config) { c.BatchSize = -5 }, "BatchSize"},
		{"negative overlap", nil, nil, func(c *Config) { c.Overlap = -0.1 }, "Overlap"},
		{"unknown policy", nil, nil, func(c *Config) { c.ConflictPolicy = "merge" }, "ConflictPolicy"},
		{"length mismatch", []float64{1, 2}, []float64{1}, func(*Config) {}, "lengths differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			_, err := IdentifyAllGroups(tt.x, tt.y, cfg)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestIdentifyAllGroups_LogsAndProgress(t *testing.T) {
	var logBuf, barBuf bytes.Buffer
	x, y := gridPoints(64)

	cfg := DefaultConfig()
	cfg.Sep = 1.1
	cfg.BatchSize = 1024
	cfg.Logger = zerolog.New(&logBuf).Level(zerolog.InfoLevel)
	cfg.Progress = &barBuf

	if _, err := IdentifyAllGroups(x, y, cfg); err != nil {
		t.Fatal(err)
	}
	logs := logBuf.String()
	for _, want := range []string{"Identifying groups in 2 x 2 batches", "Total number of groups = 1"} {
		if !strings.Contains(logs, want) {
			t.Errorf("log missing %q:\n%s", want, logs)
		}
	}
	if strings.Contains(logs, "Batch(") {
		t.Error("debug batch lines logged at info level")
	}
	if barBuf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestIdentifyAllGroups_SepWiderThanOverlap(t *testing.T) {
	// 8 x 8 tiles of width 3.5 are padded by 0.35, less than the unit
	// spacing, so the tiles share no points and the grid comes back as four
	// separate groups with no conflict.
	x, y := gridPoints(8)

	cfg := DefaultConfig()
	cfg.Sep = 1.1
	cfg.BatchSize = 16
	res, err := IdentifyAllGroups(x, y, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.NumGroups != 4 || res.NumGrouped != 64 {
		t.Errorf("got %d groups with %d members, want 4 with 64", res.NumGroups, res.NumGrouped)
	}
	if res.Conflicts != 0 {
		t.Errorf("Conflicts = %d, want 0", res.Conflicts)
	}
	// (3, 0) and (4, 0) are within Sep but on either side of the tile edge.
	if a, b := res.GroupIDs[3*8], res.GroupIDs[4*8]; a == b {
		t.Errorf("points across the tile edge share group %d", a)
	}
}

// bridgedPairs returns two pairs that tile (0, 0) sees as separate groups,
// joined by two points that only tile (1, 0) sees. The corners fix a 10 x 10
// bounding box, and 8 points at BatchSize 2 give a 2 x 2 grid with tile edges
// at 5 and padding 0.5.
func bridgedPairs() (x, y []float64) {
	x = []float64{0, 10, 5.0, 5.4, 5.0, 5.4, 6.0, 6.0}
	y = []float64{0, 10, 1.0, 1.0, 3.0, 3.0, 1.6, 2.4}
	return x, y
}

func TestIdentifyAllGroups_Conflicts(t *testing.T) {
	tests := []struct {
		policy     ConflictPolicy
		wantIDs    []int
		wantGroups int
	}{
		{ConflictWarn, []int{Ungrouped, Ungrouped, 0, 0, 1, 1, 0, 0}, 2},
		{ConflictUnion, []int{Ungrouped, Ungrouped, 0, 0, 0, 0, 0, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			var logBuf bytes.Buffer
			x, y := bridgedPairs()

			cfg := DefaultConfig()
			cfg.Sep = 1
			cfg.BatchSize = 2
			cfg.ConflictPolicy = tt.policy
			cfg.Logger = zerolog.New(&logBuf)

			res, err := IdentifyAllGroups(x, y, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.wantIDs, res.GroupIDs); diff != "" {
				t.Errorf("GroupIDs mismatch (-want +got):\n%s", diff)
			}
			if res.Conflicts != 1 {
				t.Errorf("Conflicts = %d, want 1", res.Conflicts)
			}
			if res.NumGroups != tt.wantGroups || res.NumGrouped != 6 {
				t.Errorf("got %d groups with %d members, want %d with 6", res.NumGroups, res.NumGrouped, tt.wantGroups)
			}
			if res.Batches != 3 {
				t.Errorf("Batches = %d, want 3", res.Batches)
			}
			if !strings.Contains(logBuf.String(), "inconsistent group IDs") {
				t.Errorf("missing conflict summary in log:\n%s", logBuf.String())
			}
		})
	}
}
