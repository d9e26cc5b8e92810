package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Grid is a single-band raster held in memory. Samples are float64 with NaN
// as the nodata sentinel, no matter what the on-disk dtype was. The
// geotransform follows the GDAL convention: origin at the top-left corner,
// gt[5] negative for north-up rasters.
type Grid struct {
	Width, Height int
	GeoTransform  [6]float64
	Projection    string
	Data          []float64
}

func NewGrid(width, height int, geoTransform [6]float64, projection string) *Grid {
	data := make([]float64, width*height)
	for i := range data {
		data[i] = math.NaN()
	}
	return &Grid{
		Width:        width,
		Height:       height,
		GeoTransform: geoTransform,
		Projection:   projection,
		Data:         data,
	}
}

func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Width+x] = v
}

// SameShape reports whether two grids can be combined cell by cell.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

func (g *Grid) AllNoData() bool {
	for _, v := range g.Data {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}

func (g *Grid) ValidCount() int {
	n := 0
	for _, v := range g.Data {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// ValueRange returns the min and max over valid cells, ok=false when the
// grid holds no valid cell at all.
func (g *Grid) ValueRange() (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	ok := false
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		ok = true
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// PixelCenter returns the geographic coordinates of the center of pixel (x, y).
func (g *Grid) PixelCenter(x, y int) (float64, float64) {
	gt := g.GeoTransform
	px := gt[0] + gt[1]*(float64(x)+0.5) + gt[2]*(float64(y)+0.5)
	py := gt[3] + gt[4]*(float64(x)+0.5) + gt[5]*(float64(y)+0.5)
	return px, py
}

// Bound returns the geographic bounding box covered by the grid.
func (g *Grid) Bound() orb.Bound {
	gt := g.GeoTransform
	x0 := gt[0]
	x1 := gt[0] + gt[1]*float64(g.Width)
	y0 := gt[3]
	y1 := gt[3] + gt[5]*float64(g.Height)
	return orb.Bound{
		Min: orb.Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max: orb.Point{math.Max(x0, x1), math.Max(y0, y1)},
	}
}

func (g *Grid) Copy() *Grid {
	out := &Grid{
		Width:        g.Width,
		Height:       g.Height,
		GeoTransform: g.GeoTransform,
		Projection:   g.Projection,
		Data:         make([]float64, len(g.Data)),
	}
	copy(out.Data, g.Data)
	return out
}

// Window crops the grid to the pixel rectangle [x0,x1) x [y0,y1).
func (g *Grid) Window(x0, y0, x1, y1 int) (*Grid, error) {
	if x0 < 0 || y0 < 0 || x1 > g.Width || y1 > g.Height || x0 >= x1 || y0 >= y1 {
		return nil, fmt.Errorf("invalid window [%d:%d,%d:%d] for %dx%d grid", x0, x1, y0, y1, g.Width, g.Height)
	}
	gt := g.GeoTransform
	gt[0] += gt[1]*float64(x0) + gt[2]*float64(y0)
	gt[3] += gt[4]*float64(x0) + gt[5]*float64(y0)

	out := NewGrid(x1-x0, y1-y0, gt, g.Projection)
	for y := y0; y < y1; y++ {
		copy(out.Data[(y-y0)*out.Width:(y-y0+1)*out.Width], g.Data[y*g.Width+x0:y*g.Width+x1])
	}
	return out, nil
}

// ClipBound crops the grid to the pixels intersecting the geographic box.
func (g *Grid) ClipBound(b orb.Bound) (*Grid, error) {
	x0, y0, x1, y1, err := g.windowForBound(b)
	if err != nil {
		return nil, err
	}
	return g.Window(x0, y0, x1, y1)
}

func (g *Grid) windowForBound(b orb.Bound) (int, int, int, int, error) {
	gt := g.GeoTransform
	if gt[1] == 0 || gt[5] == 0 {
		return 0, 0, 0, 0, fmt.Errorf("degenerate geotransform %v", gt)
	}
	// Row/column ranges for the box corners. Works for north-up rasters,
	// which is all this pipeline produces after warping.
	cx0 := int(math.Floor((b.Min[0] - gt[0]) / gt[1]))
	cx1 := int(math.Ceil((b.Max[0] - gt[0]) / gt[1]))
	cy0 := int(math.Floor((b.Max[1] - gt[3]) / gt[5]))
	cy1 := int(math.Ceil((b.Min[1] - gt[3]) / gt[5]))

	x0 := clampInt(cx0, 0, g.Width)
	x1 := clampInt(cx1, 0, g.Width)
	y0 := clampInt(cy0, 0, g.Height)
	y1 := clampInt(cy1, 0, g.Height)
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, 0, 0, fmt.Errorf("bound %v does not overlap the grid", b)
	}
	return x0, y0, x1, y1, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
