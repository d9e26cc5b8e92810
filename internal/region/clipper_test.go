package region

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/drought-guardian/drought-vis-poc/internal/modis"
	"github.com/drought-guardian/drought-vis-poc/internal/raster"
	"github.com/drought-guardian/drought-vis-poc/internal/vis"
	"github.com/paulmach/orb"
)

// 4x4 grid over lon [100,102], lat [38,40], half-degree pixels.
var testTransform = [6]float64{100, 0.5, 0, 40, 0, -0.5}

func filledGrid(v float64) *raster.Grid {
	g := raster.NewGrid(4, 4, testTransform, "")
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

func rectangle(minLon, minLat, maxLon, maxLat float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}}
}

func TestClipGrid(t *testing.T) {
	g := filledGrid(7)
	// Covers exactly the top-left quadrant.
	geom := rectangle(100, 39, 101, 40)

	clipped, err := ClipGrid(g, geom)
	if err != nil {
		t.Fatalf("ClipGrid: %v", err)
	}
	if clipped.Width != 2 || clipped.Height != 2 {
		t.Fatalf("clipped shape = %dx%d, want 2x2", clipped.Width, clipped.Height)
	}
	if clipped.ValidCount() != 4 {
		t.Errorf("valid cells = %d, want 4", clipped.ValidCount())
	}
}

func TestClipGridNullsOutsidePolygon(t *testing.T) {
	g := filledGrid(7)
	// Triangle covering roughly half of the top-left quadrant.
	geom := orb.MultiPolygon{{{
		{100, 40}, {101, 40}, {100, 39}, {100, 40},
	}}}

	clipped, err := ClipGrid(g, geom)
	if err != nil {
		t.Fatalf("ClipGrid: %v", err)
	}
	if clipped.ValidCount() >= 4 {
		t.Errorf("triangle clip kept %d of %d cells, expected some outside pixels nulled",
			clipped.ValidCount(), len(clipped.Data))
	}
	if clipped.ValidCount() == 0 {
		t.Error("triangle clip removed every pixel")
	}
}

func TestClipGridDisjoint(t *testing.T) {
	g := filledGrid(7)
	if _, err := ClipGrid(g, rectangle(10, 10, 11, 11)); err == nil {
		t.Error("expected error for a polygon outside the grid")
	}
}

func TestClipSeriesKeepsDates(t *testing.T) {
	s := &raster.Series{}
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Add(d1, filledGrid(1))
	s.Add(d2, filledGrid(2))

	clipped, err := ClipSeries(s, rectangle(100, 39, 101, 40))
	if err != nil {
		t.Fatalf("ClipSeries: %v", err)
	}
	if clipped.Len() != 2 || !clipped.Dates[0].Equal(d1) || !clipped.Dates[1].Equal(d2) {
		t.Errorf("clipped series dates = %v", clipped.Dates)
	}
}

func TestAdminRegionValid(t *testing.T) {
	tests := []struct {
		name   string
		region AdminRegion
		want   bool
	}{
		{"normal polygon", AdminRegion{Name: "a", Geometry: rectangle(0, 0, 1, 1)}, true},
		{"empty geometry", AdminRegion{Name: "b"}, false},
		{"degenerate ring", AdminRegion{Name: "c", Geometry: orb.MultiPolygon{{{
			{0, 0}, {0, 0}, {0, 0}, {0, 0},
		}}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdminRegionPathName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Beijing", "Beijing"},
		{"Inner Mongolia", "Inner_Mongolia"},
		{"foo/../bar", "foobar"},
		{"北京市", "北京市"},
	}
	for _, tt := range tests {
		r := AdminRegion{Name: tt.name}
		if got := r.PathName(); got != tt.want {
			t.Errorf("PathName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// Blank-name, invalid-geometry and non-intersecting regions are skipped
// before any directory is created under the save root.
func TestPassSkipsUnusableRegions(t *testing.T) {
	s := &raster.Series{}
	if err := s.Add(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), filledGrid(7)); err != nil {
		t.Fatal(err)
	}

	regions := []AdminRegion{
		{Name: "   "},
		{Name: "degenerate", Geometry: orb.MultiPolygon{{{
			{0, 0}, {0, 0}, {0, 0}, {0, 0},
		}}}},
		{Name: "elsewhere", Geometry: rectangle(10, 10, 11, 11)},
	}

	saveRoot := t.TempDir()
	stats := Pass(s, regions, "province", saveRoot, modis.LSTNaming(), vis.JetColormap(), 0, 10)
	if len(stats) != 0 {
		t.Errorf("skipped regions produced %d stats rows", len(stats))
	}

	entries, err := os.ReadDir(saveRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("skipped regions created output under the save root: %v", entries)
	}
}

// A region whose polygon covers only nodata pixels must produce no output
// directory content; the skip happens before any file is written.
func TestClipAllNoData(t *testing.T) {
	g := raster.NewGrid(4, 4, testTransform, "")
	clipped, err := ClipGrid(g, rectangle(100, 39, 101, 40))
	if err != nil {
		t.Fatalf("ClipGrid: %v", err)
	}
	if !clipped.AllNoData() {
		t.Error("expected all-nodata clip result")
	}
	if !math.IsNaN(clipped.At(0, 0)) {
		t.Error("nodata cell lost its sentinel")
	}
}
