package modis

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/drought-guardian/drought-vis-poc/internal/raster"
)

func TestMeanPair(t *testing.T) {
	day := raster.NewGrid(2, 2, testTransform, "")
	night := raster.NewGrid(2, 2, testTransform, "")

	day.Set(0, 0, 20)
	night.Set(0, 0, 10) // both valid -> 15
	day.Set(1, 0, 8)    // only day valid -> 8
	night.Set(0, 1, -4) // only night valid -> -4
	// (1,1) nodata on both sides -> nodata

	out, err := MeanPair(day, night)
	if err != nil {
		t.Fatalf("MeanPair: %v", err)
	}

	if got := out.At(0, 0); got != 15 {
		t.Errorf("both-valid cell = %v, want 15", got)
	}
	if got := out.At(1, 0); got != 8 {
		t.Errorf("day-only cell = %v, want 8", got)
	}
	if got := out.At(0, 1); got != -4 {
		t.Errorf("night-only cell = %v, want -4", got)
	}
	if !math.IsNaN(out.At(1, 1)) {
		t.Errorf("both-nodata cell = %v, want NaN", out.At(1, 1))
	}
}

// The mean's valid cells must be exactly the union of the inputs' valid
// cells.
func TestMeanPairValidUnion(t *testing.T) {
	day := raster.NewGrid(4, 4, testTransform, "")
	night := raster.NewGrid(4, 4, testTransform, "")
	for i := 0; i < 16; i += 2 {
		day.Data[i] = float64(i)
	}
	for i := 0; i < 16; i += 3 {
		night.Data[i] = float64(i)
	}

	out, err := MeanPair(day, night)
	if err != nil {
		t.Fatalf("MeanPair: %v", err)
	}

	for i := 0; i < 16; i++ {
		dayValid := !math.IsNaN(day.Data[i])
		nightValid := !math.IsNaN(night.Data[i])
		outValid := !math.IsNaN(out.Data[i])
		if outValid != (dayValid || nightValid) {
			t.Errorf("cell %d: valid=%v, day=%v night=%v", i, outValid, dayValid, nightValid)
		}
	}
}

func TestMeanPairShapeMismatch(t *testing.T) {
	a := raster.NewGrid(2, 2, testTransform, "")
	b := raster.NewGrid(2, 3, testTransform, "")
	if _, err := MeanPair(a, b); err == nil {
		t.Error("expected error for mismatched grid shapes")
	}
}

// A day file whose date has no night partner is skipped with a warning and
// produces no output at all.
func TestBatchDailyMeanSkipsDateWithoutNightFile(t *testing.T) {
	dayDir := t.TempDir()
	nightDir := t.TempDir()
	outDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dayDir, "LST_Day_1KM_2024001.tif"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := BatchDailyMean(dayDir, nightDir, outDir); err != nil {
		t.Fatalf("BatchDailyMean: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unpaired date produced %d output files", len(entries))
	}
}

func TestNightFilesByTag(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"LST_Night_1KM_2024001.tif",
		"LST_Night_2024032.tif",
		"LST_Day_1KM_2024001.tif",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	byTag, err := nightFilesByTag(dir)
	if err != nil {
		t.Fatalf("nightFilesByTag: %v", err)
	}
	if len(byTag) != 2 {
		t.Fatalf("indexed %d files, want 2: %v", len(byTag), byTag)
	}
	if got := byTag["2024001"]; filepath.Base(got) != "LST_Night_1KM_2024001.tif" {
		t.Errorf("tag 2024001 = %q", got)
	}
	if got := byTag["2024032"]; filepath.Base(got) != "LST_Night_2024032.tif" {
		t.Errorf("tag 2024032 = %q", got)
	}
}
