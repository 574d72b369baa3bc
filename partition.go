package skygroup

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// RandomSeed is the default seed for PartitionIntoBatches.
const RandomSeed = 1

// PartitionConfig controls PartitionIntoBatches.
type PartitionConfig struct {
	// BatchSize is the target number of points per batch, used to derive
	// the number of batches as ceil(n/BatchSize) when NBatches is 0.
	// Default: 20.
	BatchSize int

	// NBatches, if > 0, fixes the number of batches and overrides BatchSize.
	NBatches int

	// Seed seeds the choice of initial centres. Default: RandomSeed.
	Seed uint64

	// MaxIter caps the number of k-means iterations. Default: 20.
	MaxIter int

	// Logger receives batching statistics. The zero value discards them.
	Logger zerolog.Logger
}

// Partition is the result of PartitionIntoBatches.
type Partition struct {
	// Centers holds the (x, y) centre of each batch.
	Centers [][2]float64
	// Labels assigns each point to a batch in [0, len(Centers)).
	Labels []int
	// Counts holds the number of points in each batch.
	Counts []int
}

// DefaultPartitionConfig returns a PartitionConfig with reasonable defaults.
func DefaultPartitionConfig() PartitionConfig {
	return PartitionConfig{
		BatchSize: 20,
		Seed:      RandomSeed,
		MaxIter:   20,
	}
}

func applyPartitionDefaults(cfg *PartitionConfig) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 20
	}
	if cfg.Seed == 0 {
		cfg.Seed = RandomSeed
	}
	if cfg.MaxIter == 0 {
		cfg.MaxIter = 20
	}
}

// PartitionIntoBatches splits the points (x, y) into spatially compact
// batches of roughly equal size with k-means. Both axes are scaled by their
// standard deviation before clustering, so neither dominates the distance.
// Initial centres are distinct data points chosen with cfg.Seed, which makes
// the result deterministic for a given input and seed.
func PartitionIntoBatches(x, y []float64, cfg PartitionConfig) (*Partition, error) {
	applyPartitionDefaults(&cfg)
	if len(x) != len(y) {
		return nil, fmt.Errorf("skygroup: x and y lengths differ (%d != %d)", len(x), len(y))
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("skygroup: BatchSize must be >= 1, got %d", cfg.BatchSize)
	}
	if cfg.NBatches < 0 {
		return nil, fmt.Errorf("skygroup: NBatches must be >= 0, got %d", cfg.NBatches)
	}
	if cfg.MaxIter < 1 {
		return nil, fmt.Errorf("skygroup: MaxIter must be >= 1, got %d", cfg.MaxIter)
	}

	log := cfg.Logger
	n := len(x)

	k := cfg.NBatches
	if k > 0 {
		log.Info().Msgf("Splitting into k = %d batches (k user specified)", k)
	} else {
		k = int(math.Ceil(float64(n) / float64(cfg.BatchSize)))
		log.Info().Msgf("Splitting into k = %d batches", k)
	}
	if k < 1 || k > n {
		return nil, fmt.Errorf("skygroup: cannot split %d points into %d batches", n, k)
	}

	sx := axisScale(x)
	sy := axisScale(y)
	obs := make([][2]float64, n)
	for i := range obs {
		obs[i] = [2]float64{x[i] / sx, y[i] / sy}
	}

	t0 := time.Now()
	centers, labels := kmeans(obs, k, cfg.MaxIter, rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)), log)
	log.Info().Msgf("Batching took %f s", time.Since(t0).Seconds())

	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	fc := make([]float64, k)
	for i, c := range counts {
		fc[i] = float64(c)
	}
	log.Info().Msgf("Mean number of objects per batch = %f", stat.Mean(fc, nil))
	log.Info().Msgf("Min/Max number of objects per batch = (%d, %d)", slices.Min(counts), slices.Max(counts))
	log.Info().Msgf("Standard deviation of number of objects in batch = %f", stat.PopStdDev(fc, nil))

	for i := range centers {
		centers[i][0] *= sx
		centers[i][1] *= sy
	}

	return &Partition{Centers: centers, Labels: labels, Counts: counts}, nil
}

// axisScale returns the population standard deviation of v, or 1 when it
// is zero or undefined so that a flat axis is left unscaled.
func axisScale(v []float64) float64 {
	s := stat.PopStdDev(v, nil)
	if s == 0 || math.IsNaN(s) {
		return 1
	}
	return s
}

// kmeans runs Lloyd's algorithm on obs for at most maxIter iterations,
// stopping early once no label changes. A cluster that loses all its points
// keeps its previous centre.
func kmeans(obs [][2]float64, k, maxIter int, rng *rand.Rand, log zerolog.Logger) ([][2]float64, []int) {
	centers := make([][2]float64, k)
	for c, i := range rng.Perm(len(obs))[:k] {
		centers[c] = obs[i]
	}

	labels := make([]int, len(obs))
	for i := range labels {
		labels[i] = -1
	}

	sums := make([][2]float64, k)
	counts := make([]int, k)

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range obs {
			best := nearestCenter(centers, p)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		clear(sums)
		clear(counts)
		for i, p := range obs {
			l := labels[i]
			sums[l][0] += p[0]
			sums[l][1] += p[1]
			counts[l]++
		}
		for c := range centers {
			if counts[c] == 0 {
				log.Warn().Int("cluster", c).Int("iteration", iter).Msg("One of the clusters is empty; keeping its previous centre")
				continue
			}
			centers[c] = [2]float64{sums[c][0] / float64(counts[c]), sums[c][1] / float64(counts[c])}
		}
	}

	return centers, labels
}

func nearestCenter(centers [][2]float64, p [2]float64) int {
	best := 0
	bestD := math.Inf(1)
	for c, q := range centers {
		dx := p[0] - q[0]
		dy := p[1] - q[1]
		if d := dx*dx + dy*dy; d < bestD {
			best = c
			bestD = d
		}
	}
	return best
}
