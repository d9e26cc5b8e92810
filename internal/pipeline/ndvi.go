package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/drought-guardian/drought-vis-poc/internal/modis"
	"github.com/drought-guardian/drought-vis-poc/internal/properties"
	"github.com/drought-guardian/drought-vis-poc/internal/region"
	"github.com/drought-guardian/drought-vis-poc/internal/vis"
	"github.com/drought-guardian/drought-vis-poc/output"
	"github.com/fatih/color"
)

// RunNDVI clips an already-rescaled MOD13A3 vegetation-index series
// (scaled_<YYYYDDD>_NDVI.tif) to the province and city boundaries, one
// output per acquisition date.
func RunNDVI(inputDir, outputDir string) error {
	fmt.Printf("Processing NDVI from %s\n", inputDir)

	series, fingerprint, err := loadSeries(inputDir, "scaled_", "_NDVI.tif", "Loading NDVI series")
	if err != nil {
		return err
	}

	vmin, vmax, err := cachedValueRange(series, fingerprint, filepath.Join(inputDir, ".range_cache"))
	if err != nil {
		return err
	}
	fmt.Printf("NDVI value range: %.2f ~ %.2f\n", vmin, vmax)

	cm := vis.JetColormap()
	naming := modis.NDVINaming()

	var stats []region.Stat
	levels := []struct {
		name    string
		shpPath string
	}{
		{"province", properties.ProvinceShapefilePath()},
		{"city", properties.CityShapefilePath()},
	}
	for _, l := range levels {
		regions, err := region.LoadRegions(l.shpPath, "name")
		if err != nil {
			return fmt.Errorf("failed to load %s boundaries: %w", l.name, err)
		}
		stats = append(stats, region.Pass(series, regions, l.name, outputDir, naming, cm, vmin, vmax)...)
	}

	if len(stats) > 0 {
		if err := output.WriteRegionStats(stats, filepath.Join(outputDir, "region_stats.csv")); err != nil {
			color.Red("Failed to write region stats: %s", err.Error())
		}
	}

	fmt.Printf("NDVI regional clipping finished\n")
	return nil
}
