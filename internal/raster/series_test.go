package raster

import (
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeriesAddEnforcesShape(t *testing.T) {
	s := &Series{}
	if err := s.Add(date(2024, 1, 1), NewGrid(2, 2, testTransform, "")); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := s.Add(date(2024, 1, 9), NewGrid(3, 2, testTransform, "")); err == nil {
		t.Error("expected error adding a differently shaped grid")
	}
}

func TestSeriesSort(t *testing.T) {
	s := &Series{}
	g := func(v float64) *Grid {
		grid := NewGrid(1, 1, testTransform, "")
		grid.Set(0, 0, v)
		return grid
	}
	s.Add(date(2024, 3, 1), g(3))
	s.Add(date(2024, 1, 1), g(1))
	s.Add(date(2024, 2, 1), g(2))
	s.Sort()

	for i, want := range []float64{1, 2, 3} {
		if got := s.Grids[i].At(0, 0); got != want {
			t.Errorf("slice %d = %v, want %v", i, got, want)
		}
	}
}

func TestSeriesValueRange(t *testing.T) {
	s := &Series{}
	a := NewGrid(1, 2, testTransform, "")
	a.Set(0, 0, 4)
	b := NewGrid(1, 2, testTransform, "")
	b.Set(0, 1, -7)
	s.Add(date(2024, 1, 1), a)
	s.Add(date(2024, 1, 9), b)

	min, max, ok := s.ValueRange()
	if !ok || min != -7 || max != 4 {
		t.Errorf("ValueRange = %v,%v,%v, want -7,4,true", min, max, ok)
	}
}

// Months merge across years, and a month with no slices must be absent from
// the result instead of appearing empty.
func TestSeriesGroupByMonth(t *testing.T) {
	s := &Series{}
	g := func(v float64) *Grid {
		grid := NewGrid(1, 1, testTransform, "")
		grid.Set(0, 0, v)
		return grid
	}
	s.Add(date(2023, 1, 5), g(10))
	s.Add(date(2024, 1, 20), g(20))
	s.Add(date(2024, 2, 1), g(7))

	monthly := s.GroupByMonth()
	if len(monthly) != 2 {
		t.Fatalf("got %d months, want 2", len(monthly))
	}
	if got := monthly[time.January].At(0, 0); got != 15 {
		t.Errorf("January mean = %v, want 15 (cross-year merge)", got)
	}
	if got := monthly[time.February].At(0, 0); got != 7 {
		t.Errorf("February mean = %v, want 7", got)
	}
	if _, ok := monthly[time.March]; ok {
		t.Error("March has no slices and must not appear")
	}
}

func TestSeriesGroupByMonthNoDataAsAbsence(t *testing.T) {
	s := &Series{}
	a := NewGrid(1, 1, testTransform, "")
	a.Set(0, 0, 6)
	b := NewGrid(1, 1, testTransform, "") // nodata slice
	s.Add(date(2024, 1, 1), a)
	s.Add(date(2024, 1, 9), b)

	monthly := s.GroupByMonth()
	if got := monthly[time.January].At(0, 0); got != 6 {
		t.Errorf("January mean = %v, want 6; nodata must not count as zero", got)
	}
}

func TestCoarsenGrid(t *testing.T) {
	g := NewGrid(4, 4, testTransform, "")
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			g.Set(x, y, 2)
		}
	}
	g.Set(0, 0, 6) // block mean of top-left becomes 3
	g.Set(3, 3, math.NaN())

	c := CoarsenGrid(g, 2)
	if c.Width != 2 || c.Height != 2 {
		t.Fatalf("coarse shape = %dx%d, want 2x2", c.Width, c.Height)
	}
	if got := c.At(0, 0); got != 3 {
		t.Errorf("block mean = %v, want 3", got)
	}
	// NaN ignored, remaining three cells average to 2.
	if got := c.At(1, 1); got != 2 {
		t.Errorf("block with nodata = %v, want 2", got)
	}
	if c.GeoTransform[1] != 1.0 || c.GeoTransform[5] != -1.0 {
		t.Errorf("coarse pixel size = %v,%v, want 1,-1", c.GeoTransform[1], c.GeoTransform[5])
	}
}

func TestCoarsenGridTrims(t *testing.T) {
	g := NewGrid(5, 5, testTransform, "")
	c := CoarsenGrid(g, 2)
	if c.Width != 2 || c.Height != 2 {
		t.Errorf("coarse shape = %dx%d, want 2x2 (trailing row/col trimmed)", c.Width, c.Height)
	}
}
