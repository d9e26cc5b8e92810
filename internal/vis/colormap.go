package vis

import "math"

// Colormap is a 256-entry RGBA lookup table embedded into visualization
// rasters. Index 0 is fully transparent and reserved for nodata.
type Colormap [256][4]uint8

// JetColormap builds the blue-to-red gradient used by every visualization
// output of a run. It is a pure function; build it once and pass it around so
// all outputs share the same palette.
func JetColormap() Colormap {
	var cm Colormap
	for i := 1; i < 256; i++ {
		r, g, b := jetColor(float64(i) / 255)
		cm[i] = [4]uint8{r, g, b, 255}
	}
	cm[0] = [4]uint8{0, 0, 0, 0}
	return cm
}

// jetColor maps t in [0,1] to the classic jet gradient.
func jetColor(t float64) (uint8, uint8, uint8) {
	r := clamp01(1.5 - math.Abs(4*t-3))
	g := clamp01(1.5 - math.Abs(4*t-2))
	b := clamp01(1.5 - math.Abs(4*t-1))
	return uint8(r*255 + 0.5), uint8(g*255 + 0.5), uint8(b*255 + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
