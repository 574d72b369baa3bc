package skygroup

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// ReprojectToEquator rotates a set of sky coordinates (degrees) so that
// their centre of mass lies at (0, 0). Angular separations are preserved,
// which makes a planar metric usable on the result near the celestial poles
// and across the R.A. 0/360 wrap. Output R.A. values are in [-180, 180).
func ReprojectToEquator(ras, decs []float64) (newRAs, newDecs []float64) {
	if len(ras) != len(decs) {
		panic(fmt.Sprintf("skygroup: ReprojectToEquator length mismatch (ras=%d, decs=%d)", len(ras), len(decs)))
	}
	n := len(ras)
	newRAs = make([]float64, n)
	newDecs = make([]float64, n)
	if n == 0 {
		return newRAs, newDecs
	}

	raC, decC := skyCentre(ras, decs)

	// Rotating about +y by decC takes the centre from (0, decC) to (0, 0).
	rot := r3.NewRotation(decC*DegToRad, r3.Vec{Y: 1})

	for i := range ras {
		ra := wrap180(ras[i] - raC)
		p := rot.Rotate(unitVec(ra, decs[i]))
		newDecs[i] = math.Asin(min(max(p.Z, -1), 1)) * RadToDeg
		newRAs[i] = math.Atan2(p.Y, p.X) * RadToDeg
	}
	return newRAs, newDecs
}

// skyCentre estimates the centre of mass of a set of sky coordinates.
// The centre R.A. comes from the mean of the points projected onto the
// equatorial plane. Away from the poles the centre Dec. is the mean Dec.;
// within 45 degrees of a pole it is taken from the projected mean instead,
// since the mean Dec. is biased there.
func skyCentre(ras, decs []float64) (raC, decC float64) {
	xs := make([]float64, len(ras))
	ys := make([]float64, len(ras))
	for i := range ras {
		cosDec := math.Cos(decs[i] * DegToRad)
		xs[i] = cosDec * math.Cos(ras[i]*DegToRad)
		ys[i] = cosDec * math.Sin(ras[i]*DegToRad)
	}
	xc := stat.Mean(xs, nil)
	yc := stat.Mean(ys, nil)
	raC = math.Atan2(yc, xc) * RadToDeg

	meanDec := stat.Mean(decs, nil)
	if math.Abs(meanDec) < 45 {
		return raC, meanDec
	}
	decC = math.Acos(min(math.Hypot(xc, yc), 1)) * RadToDeg
	if meanDec < 0 {
		decC = -decC
	}
	return raC, decC
}

func unitVec(raDeg, decDeg float64) r3.Vec {
	sinRA, cosRA := math.Sincos(raDeg * DegToRad)
	sinDec, cosDec := math.Sincos(decDeg * DegToRad)
	return r3.Vec{X: cosRA * cosDec, Y: sinRA * cosDec, Z: sinDec}
}

// wrap180 maps an angle in degrees into [-180, 180).
func wrap180(a float64) float64 {
	m := math.Mod(a+180, 360)
	if m < 0 {
		m += 360
	}
	return m - 180
}
