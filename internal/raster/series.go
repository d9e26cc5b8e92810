package raster

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Series is a time-ordered stack of same-grid rasters. All grids share shape,
// geotransform and CRS so cell-wise aggregation is meaningful.
type Series struct {
	Dates []time.Time
	Grids []*Grid
}

func (s *Series) Len() int {
	return len(s.Grids)
}

func (s *Series) Add(date time.Time, g *Grid) error {
	if len(s.Grids) > 0 && !s.Grids[0].SameShape(g) {
		return fmt.Errorf("grid %dx%d does not match series shape %dx%d",
			g.Width, g.Height, s.Grids[0].Width, s.Grids[0].Height)
	}
	s.Dates = append(s.Dates, date)
	s.Grids = append(s.Grids, g)
	return nil
}

func (s *Series) Sort() {
	idx := make([]int, len(s.Dates))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return s.Dates[idx[a]].Before(s.Dates[idx[b]]) })

	dates := make([]time.Time, len(idx))
	grids := make([]*Grid, len(idx))
	for i, j := range idx {
		dates[i] = s.Dates[j]
		grids[i] = s.Grids[j]
	}
	s.Dates = dates
	s.Grids = grids
}

// ValueRange scans every slice once so one shared color range serves the
// whole batch.
func (s *Series) ValueRange() (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	found := false
	for _, g := range s.Grids {
		lo, hi, ok := g.ValueRange()
		if !ok {
			continue
		}
		found = true
		if lo < min {
			min = lo
		}
		if hi > max {
			max = hi
		}
	}
	return min, max, found
}

// GroupByMonth merges slices by calendar month across years and returns the
// per-pixel mean for each month that has at least one contributing slice.
func (s *Series) GroupByMonth() map[time.Month]*Grid {
	out := make(map[time.Month]*Grid)
	if len(s.Grids) == 0 {
		return out
	}

	type acc struct {
		sum   []float64
		count []int
	}
	accs := make(map[time.Month]*acc)
	n := len(s.Grids[0].Data)

	for i, g := range s.Grids {
		m := s.Dates[i].Month()
		a := accs[m]
		if a == nil {
			a = &acc{sum: make([]float64, n), count: make([]int, n)}
			accs[m] = a
		}
		for j, v := range g.Data {
			if math.IsNaN(v) {
				continue
			}
			a.sum[j] += v
			a.count[j]++
		}
	}

	ref := s.Grids[0]
	for m, a := range accs {
		g := NewGrid(ref.Width, ref.Height, ref.GeoTransform, ref.Projection)
		for j := range a.sum {
			if a.count[j] > 0 {
				g.Data[j] = a.sum[j] / float64(a.count[j])
			}
		}
		out[m] = g
	}
	return out
}

// Coarsen block-averages every slice by the given factor, trimming rows and
// columns that do not fill a whole block. Used for national overview grids
// and animation frames.
func (s *Series) Coarsen(factor int) *Series {
	out := &Series{}
	for i, g := range s.Grids {
		out.Dates = append(out.Dates, s.Dates[i])
		out.Grids = append(out.Grids, CoarsenGrid(g, factor))
	}
	return out
}

func CoarsenGrid(g *Grid, factor int) *Grid {
	if factor <= 1 {
		return g.Copy()
	}
	w := g.Width / factor
	h := g.Height / factor
	gt := g.GeoTransform
	gt[1] *= float64(factor)
	gt[2] *= float64(factor)
	gt[4] *= float64(factor)
	gt[5] *= float64(factor)

	out := NewGrid(w, h, gt, g.Projection)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, count := 0.0, 0
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					v := g.At(x*factor+dx, y*factor+dy)
					if math.IsNaN(v) {
						continue
					}
					sum += v
					count++
				}
			}
			if count > 0 {
				out.Set(x, y, sum/float64(count))
			}
		}
	}
	return out
}
