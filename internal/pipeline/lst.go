package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drought-guardian/drought-vis-poc/internal/modis"
	"github.com/drought-guardian/drought-vis-poc/internal/properties"
	"github.com/drought-guardian/drought-vis-poc/internal/raster"
	"github.com/drought-guardian/drought-vis-poc/internal/region"
	"github.com/drought-guardian/drought-vis-poc/internal/summary"
	"github.com/drought-guardian/drought-vis-poc/internal/vis"
	"github.com/drought-guardian/drought-vis-poc/output"
	"github.com/fatih/color"
	"github.com/paulmach/orb"
)

// nationalBound is the geographic box the mean series is clipped to before
// national aggregation: mainland China.
var nationalBound = orb.Bound{Min: orb.Point{73, 18}, Max: orb.Point{135, 54}}

const nationalRegionName = "china"

// RunLST executes the full MOD11A2 land-surface-temperature batch for one
// base directory laid out as LST/{Day,Night} + QC/{Day,Night}.
func RunLST(baseDir string) error {
	fmt.Printf("Processing %s\n", baseDir)

	dirs := map[string]string{
		"maskedDay":   filepath.Join(baseDir, "processed_masked", "Day"),
		"maskedNight": filepath.Join(baseDir, "processed_masked", "Night"),
		"mean":        filepath.Join(baseDir, "processed_mean"),
		"plots":       filepath.Join(baseDir, "plots"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	if err := modis.BatchMaskQuality(
		filepath.Join(baseDir, "LST", "Day"),
		filepath.Join(baseDir, "QC", "Day"),
		dirs["maskedDay"],
	); err != nil {
		return err
	}
	if err := modis.BatchMaskQuality(
		filepath.Join(baseDir, "LST", "Night"),
		filepath.Join(baseDir, "QC", "Night"),
		dirs["maskedNight"],
	); err != nil {
		return err
	}

	if err := modis.BatchDailyMean(dirs["maskedDay"], dirs["maskedNight"], dirs["mean"]); err != nil {
		return err
	}

	series, fingerprint, err := loadSeries(dirs["mean"], "LST_Mean_", ".tif", "Loading mean series")
	if err != nil {
		return err
	}

	national := &raster.Series{}
	for i, g := range series.Grids {
		clipped, err := g.ClipBound(nationalBound)
		if err != nil {
			color.Yellow("Slice %s is outside the national extent: %s",
				series.Dates[i].Format("2006-01-02"), err.Error())
			continue
		}
		if err := national.Add(series.Dates[i], clipped); err != nil {
			color.Yellow("Skipping slice %s: %s", series.Dates[i].Format("2006-01-02"), err.Error())
		}
	}
	if national.Len() == 0 {
		return fmt.Errorf("no slice intersects the national extent")
	}

	vmin, vmax, err := cachedValueRange(national, fingerprint, filepath.Join(baseDir, ".range_cache"))
	if err != nil {
		return err
	}
	fmt.Printf("Batch temperature range: %.2f°C ~ %.2f°C\n", vmin, vmax)

	cm := vis.JetColormap()
	naming := modis.LSTNaming()

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
		stats = append(stats, region.Pass(national, regions, l.name, dirs["plots"], naming, cm, vmin, vmax)...)
	}

	if err := summary.NationalPass(national, nationalRegionName, naming, cm, dirs["plots"], vmin, vmax); err != nil {
		return err
	}

	animation := national.Coarsen(summary.CoarsenFactor)
	if err := output.CreateAnimation(animation, cm, vmin, vmax, filepath.Join(baseDir, "lst_animation.avi")); err != nil {
		color.Red("Failed to render animation: %s", err.Error())
	}

	if len(stats) > 0 {
		if err := output.WriteRegionStats(stats, filepath.Join(dirs["plots"], "region_stats.csv")); err != nil {
			color.Red("Failed to write region stats: %s", err.Error())
		}
	}

	fmt.Printf("Finished %s\n", baseDir)
	return nil
}
