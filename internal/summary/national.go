package summary

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drought-guardian/drought-vis-poc/internal/modis"
	"github.com/drought-guardian/drought-vis-poc/internal/raster"
	"github.com/drought-guardian/drought-vis-poc/internal/vis"
	"github.com/fatih/color"
)

// CoarsenFactor is the block size of the national overview downsampling.
const CoarsenFactor = 5

// NationalPass writes the country-scale monthly overview: per-month means of
// the full series, block-averaged down by CoarsenFactor, as raw plus
// visualization rasters named <region>_<prefix>_month<m>.tif.
func NationalPass(series *raster.Series, regionName string, naming modis.Naming,
	cm vis.Colormap, outDir string, vmin, vmax float64) error {

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	monthly := series.GroupByMonth()
	for m := time.January; m <= time.December; m++ {
		g, ok := monthly[m]
		if !ok {
			color.Yellow("No national data for month %d", int(m))
			continue
		}
		coarse := raster.CoarsenGrid(g, CoarsenFactor)
		if coarse.AllNoData() {
			color.Yellow("National month %d is all nodata after downsampling", int(m))
			continue
		}

		rawPath := filepath.Join(outDir, naming.MonthName(regionName, m))
		if err := raster.WriteGrid(rawPath, coarse); err != nil {
			return err
		}

		encoded, err := vis.Encode(coarse, vmin, vmax)
		if err != nil {
			color.Yellow("Skipping national visualization for month %d: %s", int(m), err.Error())
			continue
		}
		if err := vis.WriteVis(filepath.Join(outDir, naming.MonthVisName(regionName, m)), encoded, cm); err != nil {
			return err
		}
	}
	return nil
}
