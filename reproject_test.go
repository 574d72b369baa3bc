package skygroup

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// allClose mirrors numpy.allclose's default tolerances, loosened slightly.
func allClose(a, b []float64) (int, bool) {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-7+1e-5*math.Abs(b[i]) {
			return i, false
		}
	}
	return -1, true
}

func checkReprojection(t *testing.T, ras, decs []float64) {
	t.Helper()

	before := DistanceMatrix(ras, decs, HaversineDegMetric{})
	newRAs, newDecs := ReprojectToEquator(ras, decs)
	after := DistanceMatrix(newRAs, newDecs, HaversineDegMetric{})

	if i, ok := allClose(after, before); !ok {
		t.Fatalf("pair %d: distance changed from %v to %v", i, before[i], after[i])
	}

	if xc := stat.Mean(newRAs, nil); !almostEqual(xc, 0, 1e-3) {
		t.Errorf("mean R.A. after reprojection = %v, want ~0", xc)
	}
	if yc := stat.Mean(newDecs, nil); !almostEqual(yc, 0, 1e-3) {
		t.Errorf("mean Dec. after reprojection = %v, want ~0", yc)
	}
}

// squareOfPoints returns n points in a 0.5 x 0.5 degree square about the
// origin, rotated by a random angle, roughly the shape of one observation.
func squareOfPoints(rng *rand.Rand, n int) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	theta := rng.Float64() * math.Pi / 4
	sin, cos := math.Sincos(theta)
	for i := range x {
		u := (rng.Float64() - 0.5) * 0.5
		v := (rng.Float64() - 0.5) * 0.5
		x[i] = u*cos - v*sin
		y[i] = u*sin + v*cos
	}
	return x, y
}

func TestReprojectToEquator_AwayFromPoles(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	for trial := 0; trial < 200; trial++ {
		x, y := squareOfPoints(rng, 100)
		dRA := rng.Float64() * 360
		dDec := (rng.Float64() - 0.5) * 178
		for i := range x {
			x[i] = math.Mod(x[i]+dRA+360, 360)
			y[i] += dDec
		}
		checkReprojection(t, x, y)
	}
}

func TestReprojectToEquator_NearPoles(t *testing.T) {
	rng := rand.New(rand.NewPCG(17, 18))
	for trial := 0; trial < 200; trial++ {
		x, y := squareOfPoints(rng, 100)

		// Place the square within a degree of the pole.
		r := rng.Float64()
		phi := rng.Float64() * 2 * math.Pi
		sign := 1.0
		if rng.IntN(2) == 1 {
			sign = -1
		}

		ras := make([]float64, len(x))
		decs := make([]float64, len(x))
		for i := range x {
			px := x[i] + math.Cos(phi)*r
			py := y[i] + math.Sin(phi)*r
			decs[i] = sign * (90 - math.Hypot(px, py))
			ras[i] = math.Mod(math.Atan2(py, px)*RadToDeg+360, 360)
		}
		checkReprojection(t, ras, decs)
	}
}

func TestReprojectToEquator_AcrossRAWrap(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 20))
	x, y := squareOfPoints(rng, 200)
	for i := range x {
		// Centred on R.A. 0, so roughly half the points sit just below 360.
		x[i] = math.Mod(x[i]+360, 360)
		y[i] += 30
	}
	checkReprojection(t, x, y)

	newRAs, _ := ReprojectToEquator(x, y)
	for i, ra := range newRAs {
		if math.Abs(ra) > 1 {
			t.Fatalf("point %d: reprojected R.A. %v is far from 0", i, ra)
		}
	}
}

func TestReprojectToEquator_DoesNotModifyInput(t *testing.T) {
	ras := []float64{10, 10.1, 10.2}
	decs := []float64{-20, -20.1, -19.9}
	ReprojectToEquator(ras, decs)
	if ras[0] != 10 || decs[2] != -19.9 {
		t.Error("input slices were modified")
	}
}

func TestReprojectToEquator_Empty(t *testing.T) {
	ras, decs := ReprojectToEquator(nil, nil)
	if len(ras) != 0 || len(decs) != 0 {
		t.Errorf("expected empty output, got %v %v", ras, decs)
	}
}

func TestWrap180(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{179, 179},
		{180, -180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{359.5, -0.5},
		{720, 0},
	}
	for _, tt := range tests {
		if got := wrap180(tt.in); !almostEqual(got, tt.want, floatTol) {
			t.Errorf("wrap180(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
