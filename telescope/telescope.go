// Package telescope converts positions between the detector, focal-plane and
// field-of-view frames of the VIS and NISP instruments.
//
// Detector positions are in pixels, focal-plane positions in micrometres
// about the centre of the detector array, and field-of-view positions in
// degrees.
package telescope

import (
	"fmt"
	"math"
)

// Instrument names a camera on the focal plane.
type Instrument string

const (
	InstrumentVIS  Instrument = "VIS"
	InstrumentNISP Instrument = "NISP"
)

// ParseInstrument returns the Instrument named s.
func ParseInstrument(s string) (Instrument, error) {
	switch inst := Instrument(s); inst {
	case InstrumentVIS, InstrumentNISP:
		return inst, nil
	default:
		return "", fmt.Errorf("telescope: invalid instrument %q, allowed values are %q and %q", s, InstrumentVIS, InstrumentNISP)
	}
}

// DetectorSpecs describes the detector array of one instrument.
type DetectorSpecs struct {
	// GapDX and GapDY are the distances in µm between adjacent detectors,
	// including the inactive pixels at both edges.
	GapDX, GapDY float64

	PixelsX, PixelsY             int
	ActivePixelsX, ActivePixelsY int

	// PixelSizeUM is the edge length of a pixel in µm.
	PixelSizeUM float64

	// NDetX and NDetY are the number of detector columns and rows.
	NDetX, NDetY int

	FOVXOffsetDeg, FOVYOffsetDeg float64
	FOVScaleArcsecPerPixel       float64
}

// CIPixels is the number of inactive charge-injection rows per detector.
func (d DetectorSpecs) CIPixels() int { return d.PixelsY - d.ActivePixelsY }

// CISplitPoint is the row at which the active area is split.
func (d DetectorSpecs) CISplitPoint() int { return d.ActivePixelsY / 2 }

// DetDX is the pitch in µm between detector columns.
func (d DetectorSpecs) DetDX() float64 { return float64(d.PixelsX)*d.PixelSizeUM + d.GapDX }

// DetDY is the pitch in µm between detector rows.
func (d DetectorSpecs) DetDY() float64 { return float64(d.PixelsY)*d.PixelSizeUM + d.GapDY }

// FOVScaleDegPerUM converts focal-plane µm to field-of-view degrees.
func (d DetectorSpecs) FOVScaleDegPerUM() float64 {
	return d.FOVScaleArcsecPerPixel / 3600 / d.PixelSizeUM
}

// VIS returns the nominal VIS detector specifications.
func VIS() DetectorSpecs {
	return DetectorSpecs{
		GapDX:                  1468,
		GapDY:                  7528,
		PixelsX:                4096,
		PixelsY:                4136,
		ActivePixelsX:          4096,
		ActivePixelsY:          4132,
		PixelSizeUM:            12,
		NDetX:                  6,
		NDetY:                  6,
		FOVXOffsetDeg:          0.822,
		FOVYOffsetDeg:          0,
		FOVScaleArcsecPerPixel: 0.1,
	}
}

// NISP returns the nominal NISP detector specifications.
func NISP() DetectorSpecs {
	return DetectorSpecs{
		GapDX:                  5939.5,
		GapDY:                  11879,
		PixelsX:                2040,
		PixelsY:                2040,
		ActivePixelsX:          2040,
		ActivePixelsY:          2040,
		PixelSizeUM:            18,
		NDetX:                  4,
		NDetY:                  4,
		FOVScaleArcsecPerPixel: 0.15,
	}
}

// Specs holds the detector specifications of both instruments.
type Specs struct {
	VIS  DetectorSpecs
	NISP DetectorSpecs
}

// DefaultSpecs returns the nominal specifications of both instruments.
func DefaultSpecs() *Specs {
	return &Specs{VIS: VIS(), NISP: NISP()}
}

// For returns the specifications of inst.
func (s *Specs) For(inst Instrument) (DetectorSpecs, error) {
	switch inst {
	case InstrumentVIS:
		return s.VIS, nil
	case InstrumentNISP:
		return s.NISP, nil
	default:
		return DetectorSpecs{}, fmt.Errorf("telescope: invalid instrument %q, allowed values are %q and %q", inst, InstrumentVIS, InstrumentNISP)
	}
}

// FocalPlaneFromDetector converts pixel (xp, yp) on detector (ix, iy) to
// focal-plane coordinates in µm. Detector indices start at 1. orientation is
// the rotation in radians of the detector relative to the focal plane, about
// the detector centre. The pixel position is not required to be on the
// detector.
func (s *Specs) FocalPlaneFromDetector(xp, yp float64, ix, iy int, inst Instrument, orientation float64) (fx, fy float64, err error) {
	d, err := s.For(inst)
	if err != nil {
		return 0, 0, err
	}
	if ix < 1 || ix > d.NDetX || iy < 1 || iy > d.NDetY {
		return 0, 0, fmt.Errorf("telescope: detector (%d, %d) out of range, indices must be in [1, %d] and [1, %d]", ix, iy, d.NDetX, d.NDetY)
	}

	detDX, detDY := d.DetDX(), d.DetDY()
	offsetX := -0.5*(float64(d.NDetX)*detDX-d.GapDX) + float64(ix-1)*detDX
	offsetY := -0.5*(float64(d.NDetY)*detDY-d.GapDY) + float64(iy-1)*detDY

	halfX := float64(d.PixelsX) / 2
	halfY := float64(d.PixelsY) / 2
	xpc := xp - halfX
	ypc := yp - halfY

	sin, cos := math.Sincos(orientation)
	fx = offsetX + d.PixelSizeUM*(halfX+cos*xpc-sin*ypc)
	fy = offsetY + d.PixelSizeUM*(halfY+sin*xpc+cos*ypc)
	return fx, fy, nil
}

// FOVFromFocalPlane converts focal-plane coordinates in µm to field-of-view
// coordinates in degrees. The VIS field-of-view axes are turned a quarter
// turn from the focal-plane axes: FOV y runs along focal-plane x and FOV x
// along focal-plane -y.
func (s *Specs) FOVFromFocalPlane(fx, fy float64, inst Instrument) (fovX, fovY float64, err error) {
	d, err := s.For(inst)
	if err != nil {
		return 0, 0, err
	}
	scale := d.FOVScaleDegPerUM()
	if inst == InstrumentVIS {
		// The x offset applies along FOV y.
		fovY = d.FOVXOffsetDeg + scale*fy
		fovX = d.FOVYOffsetDeg - scale*fx
		return fovX, fovY, nil
	}
	return d.FOVXOffsetDeg + scale*fx, d.FOVYOffsetDeg + scale*fy, nil
}

// FOVFromDetector converts a detector pixel position straight to
// field-of-view degrees.
func (s *Specs) FOVFromDetector(xp, yp float64, ix, iy int, inst Instrument, orientation float64) (fovX, fovY float64, err error) {
	fx, fy, err := s.FocalPlaneFromDetector(xp, yp, ix, iy, inst, orientation)
	if err != nil {
		return 0, 0, err
	}
	return s.FOVFromFocalPlane(fx, fy, inst)
}

// Quadrant sizes of a VIS detector in pixels.
const (
	QuadrantSizeX = 2119
	QuadrantSizeY = 2066
)

// Layouts are indexed [quadrant x][quadrant y], starting from the bottom-left.
var (
	quadrantLayoutLower = [2][2]string{{"E", "H"}, {"F", "G"}}
	quadrantLayoutUpper = [2][2]string{{"G", "F"}, {"H", "E"}}
)

// Quadrant returns the letter of the VIS detector quadrant that holds pixel
// (xPix, yPix) on a detector in row detIY, or "X" when the pixel is off the
// detector. Rows 1 to 3 and 4 to 6 are read out in opposite directions.
func Quadrant(xPix, yPix float64, detIY int) string {
	layout := quadrantLayoutLower
	if detIY > 3 {
		layout = quadrantLayoutUpper
	}

	qx := math.Floor(xPix / QuadrantSizeX)
	qy := math.Floor(yPix / QuadrantSizeY)
	if qx < 0 || qx > 1 || qy < 0 || qy > 1 {
		return "X"
	}
	return layout[int(qx)][int(qy)]
}
