package telescope

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// Mission database keys read by LoadSpecs.
const (
	KeyVISGapShort       = "SpaceSegment.Instrument.VIS.VISCCDGapShortDimensionNominalImage"
	KeyVISGapLong        = "SpaceSegment.Instrument.VIS.VISCCDGapLongDimensionNominalImage"
	KeyVISActiveShort    = "SpaceSegment.Instrument.VIS.VISDetectorActivePixelShortDimensionFormat"
	KeyVISPixelsLong     = "SpaceSegment.Instrument.VIS.VISDetectorPixelLongDimensionFormat"
	KeyVISActiveLong     = "SpaceSegment.Instrument.VIS.VISDetectorActivePixelLongDimensionFormat"
	KeyVISDetectorCount  = "SpaceSegment.Instrument.VIS.VISCCDNumber"
	KeyVISFOVCentreX     = "SpaceSegment.PLM.TelescopeVISFoVCentreXscNominal"
	KeyVISFOVCentreY     = "SpaceSegment.PLM.TelescopeVISFoVCentreYscNominal"
	KeyVISPixelSize      = "SpaceSegment.Instrument.VIS.VISAveragePixelSizemicron"
	KeyNISPGapShort      = "SpaceSegment.Instrument.NISP.NISPDetectorGapShortDimensionNominalObject"
	KeyNISPGapLong       = "SpaceSegment.Instrument.NISP.NISPDetectorGapLongDimensionNominalObject"
	KeyNISPPixelsShort   = "SpaceSegment.Instrument.NISP.NISPDetectorPixelShortDimensionFormat"
	KeyNISPPixelsLong    = "SpaceSegment.Instrument.NISP.NISPDetectorPixelLongDimensionFormat"
	KeyNISPDetectorCount = "SpaceSegment.Instrument.NISP.NISPDetectorNumber"
	KeyNISPPixelSize     = "SpaceSegment.Instrument.NISP.NISPAveragePixelSize"
)

// mdbEntry is one parameter of a mission database export.
type mdbEntry struct {
	Value *float64 `yaml:"Value"`
	Unit  string   `yaml:"Unit,omitempty"`
}

type mdb map[string]mdbEntry

// ErrMissingKey is returned by LoadSpecs when a required key is absent.
var ErrMissingKey = errors.New("missing key")

func (m mdb) value(key string) (float64, error) {
	e, ok := m[key]
	if !ok || e.Value == nil {
		return 0, fmt.Errorf("telescope: %w %s", ErrMissingKey, key)
	}
	return *e.Value, nil
}

// LoadSpecs reads detector specifications from a YAML mission database
// export mapping parameter keys to {Value: ...}. The NISP field-of-view
// offsets are not held in the database and keep their nominal values.
// Gaps are given in mm.
func LoadSpecs(r io.Reader) (*Specs, error) {
	var m mdb
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("telescope: decoding specs: %w", err)
	}

	specs := DefaultSpecs()
	if err := m.applyVIS(&specs.VIS); err != nil {
		return nil, err
	}
	if err := m.applyNISP(&specs.NISP); err != nil {
		return nil, err
	}
	return specs, nil
}

func (m mdb) applyVIS(d *DetectorSpecs) error {
	var (
		gapShort, gapLong, activeShort, pixelsLong, activeLong float64
		count, fovX, fovY, pixelSize                          float64
	)
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{KeyVISGapShort, &gapShort},
		{KeyVISGapLong, &gapLong},
		{KeyVISActiveShort, &activeShort},
		{KeyVISPixelsLong, &pixelsLong},
		{KeyVISActiveLong, &activeLong},
		{KeyVISDetectorCount, &count},
		{KeyVISFOVCentreX, &fovX},
		{KeyVISFOVCentreY, &fovY},
		{KeyVISPixelSize, &pixelSize},
	} {
		v, err := m.value(f.key)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	side, err := gridSide(count)
	if err != nil {
		return fmt.Errorf("telescope: VIS: %w", err)
	}

	d.GapDX = 1000 * gapShort
	d.GapDY = 1000 * gapLong
	// All columns are active.
	d.PixelsX = int(activeShort)
	d.ActivePixelsX = int(activeShort)
	d.PixelsY = int(pixelsLong)
	d.ActivePixelsY = int(activeLong)
	d.NDetX, d.NDetY = side, side
	d.FOVXOffsetDeg = fovX
	d.FOVYOffsetDeg = fovY
	d.PixelSizeUM = pixelSize
	return nil
}

func (m mdb) applyNISP(d *DetectorSpecs) error {
	var gapShort, gapLong, pixelsShort, pixelsLong, count, pixelSize float64
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{KeyNISPGapShort, &gapShort},
		{KeyNISPGapLong, &gapLong},
		{KeyNISPPixelsShort, &pixelsShort},
		{KeyNISPPixelsLong, &pixelsLong},
		{KeyNISPDetectorCount, &count},
		{KeyNISPPixelSize, &pixelSize},
	} {
		v, err := m.value(f.key)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	side, err := gridSide(count)
	if err != nil {
		return fmt.Errorf("telescope: NISP: %w", err)
	}

	d.GapDX = 1000 * gapShort
	d.GapDY = 1000 * gapLong
	d.PixelsX = int(pixelsShort)
	d.PixelsY = int(pixelsLong)
	d.ActivePixelsX = int(pixelsShort)
	d.ActivePixelsY = int(pixelsLong)
	d.NDetX, d.NDetY = side, side
	d.PixelSizeUM = pixelSize
	return nil
}

// gridSide returns the side of a square array of count detectors.
func gridSide(count float64) (int, error) {
	n := int(count)
	side := int(math.Sqrt(float64(n)))
	if n < 1 || side*side != n {
		return 0, fmt.Errorf("detector count %v is not a perfect square", count)
	}
	return side, nil
}
