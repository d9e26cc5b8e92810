package modis

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/drought-guardian/drought-vis-poc/internal/raster"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// MeanPair averages two same-grid rasters cell by cell, treating NaN as an
// absence: a cell valid on one side keeps that value, a cell invalid on both
// stays nodata.
func MeanPair(a, b *raster.Grid) (*raster.Grid, error) {
	if !a.SameShape(b) {
		return nil, fmt.Errorf("grids %dx%d and %dx%d cannot be averaged",
			a.Width, a.Height, b.Width, b.Height)
	}
	out := raster.NewGrid(a.Width, a.Height, a.GeoTransform, a.Projection)
	for i := range a.Data {
		va, vb := a.Data[i], b.Data[i]
		switch {
		case math.IsNaN(va) && math.IsNaN(vb):
		case math.IsNaN(va):
			out.Data[i] = vb
		case math.IsNaN(vb):
			out.Data[i] = va
		default:
			out.Data[i] = (va + vb) / 2
		}
	}
	return out, nil
}

// BatchDailyMean pairs each masked day raster with its same-date night
// raster and writes LST_Mean_<tag>.tif. Dates without a night partner, or
// where either side is entirely nodata, are skipped with a warning.
func BatchDailyMean(dayDir, nightDir, outputDir string) error {
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dayDir, err)
	}
	nightByTag, err := nightFilesByTag(nightDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "LST_Day_") && strings.HasSuffix(e.Name(), ".tif") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	bar := progressbar.Default(int64(len(names)), "Averaging day/night")
	for _, name := range names {
		bar.Add(1)

		date, ok := ParseDateTag(name)
		if !ok {
			color.Yellow("Skipping %s: no date tag in filename", name)
			continue
		}
		tag := DateTag(date)

		nightPath, ok := nightByTag[tag]
		if !ok {
			color.Yellow("Missing night file for date %s, skipping", tag)
			continue
		}

		day, err := raster.ReadGrid(filepath.Join(dayDir, name))
		if err != nil {
			color.Red("Failed to read %s: %s", name, err.Error())
			continue
		}
		night, err := raster.ReadGrid(nightPath)
		if err != nil {
			color.Red("Failed to read night file for %s: %s", tag, err.Error())
			continue
		}

		if day.AllNoData() || night.AllNoData() {
			color.Yellow("Date %s has an all-nodata side, skipping", tag)
			continue
		}

		mean, err := MeanPair(day, night)
		if err != nil {
			color.Red("Failed to average date %s: %s", tag, err.Error())
			continue
		}

		outPath := filepath.Join(outputDir, fmt.Sprintf("LST_Mean_%s.tif", tag))
		if err := raster.WriteGrid(outPath, mean); err != nil {
			color.Red("Failed to write %s: %s", outPath, err.Error())
		}
	}
	bar.Finish()
	return nil
}

// nightFilesByTag indexes the night rasters by their date tag so pairing
// works regardless of extra name segments like a resolution marker.
func nightFilesByTag(nightDir string) (map[string]string, error) {
	entries, err := os.ReadDir(nightDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", nightDir, err)
	}
	byTag := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "LST_Night_") || !strings.HasSuffix(e.Name(), ".tif") {
			continue
		}
		date, ok := ParseDateTag(e.Name())
		if !ok {
			continue
		}
		byTag[DateTag(date)] = filepath.Join(nightDir, e.Name())
	}
	return byTag, nil
}
