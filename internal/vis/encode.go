package vis

import (
	"fmt"
	"math"

	"github.com/drought-guardian/drought-vis-poc/internal/raster"
)

// ByteGrid is an 8-bit paletted raster: 0 means nodata, 1..255 linearly
// encode the [VMin, VMax] value range of the source batch.
type ByteGrid struct {
	Width, Height int
	GeoTransform  [6]float64
	Projection    string
	Data          []uint8
	VMin, VMax    float64
}

// Encode normalizes a floating-point grid to a ByteGrid using the fixed
// batch-wide range. A degenerate range (vmax <= vmin) cannot be normalized
// and is reported as an error so the caller can skip the slice.
func Encode(g *raster.Grid, vmin, vmax float64) (*ByteGrid, error) {
	span := vmax - vmin
	if span <= 0 {
		return nil, fmt.Errorf("invalid value range %g~%g", vmin, vmax)
	}

	out := &ByteGrid{
		Width:        g.Width,
		Height:       g.Height,
		GeoTransform: g.GeoTransform,
		Projection:   g.Projection,
		Data:         make([]uint8, len(g.Data)),
		VMin:         vmin,
		VMax:         vmax,
	}
	for i, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		scaled := math.Round(1 + (v-vmin)/span*254)
		if scaled < 1 {
			scaled = 1
		}
		if scaled > 255 {
			scaled = 255
		}
		out.Data[i] = uint8(scaled)
	}
	return out, nil
}

// Decode recovers the approximate physical value behind an encoded cell.
// ok is false for the nodata index.
func (b *ByteGrid) Decode(encoded uint8) (float64, bool) {
	if encoded == 0 {
		return 0, false
	}
	return float64(encoded-1)/254*(b.VMax-b.VMin) + b.VMin, true
}

// QuantizationStep is the worst-case absolute error of the encoding.
func (b *ByteGrid) QuantizationStep() float64 {
	return (b.VMax - b.VMin) / 254
}
