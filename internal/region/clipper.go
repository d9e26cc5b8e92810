package region

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/drought-guardian/drought-vis-poc/internal/modis"
	"github.com/drought-guardian/drought-vis-poc/internal/raster"
	"github.com/drought-guardian/drought-vis-poc/internal/vis"
	"github.com/fatih/color"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/schollz/progressbar/v3"
)

// Stat is one row of the per-run regional statistics report.
type Stat struct {
	Region      string  `csv:"region"`
	Level       string  `csv:"level"`
	Month       int     `csv:"month"`
	MeanValue   float64 `csv:"mean_value"`
	ValidPixels int     `csv:"valid_pixels"`
}

// ClipGrid crops the grid to the polygon's bounding box and nulls every pixel
// whose center falls outside the polygon. Grid and polygon must share
// EPSG:4326.
func ClipGrid(g *raster.Grid, geom orb.MultiPolygon) (*raster.Grid, error) {
	cropped, err := g.ClipBound(geom.Bound())
	if err != nil {
		return nil, err
	}
	for y := 0; y < cropped.Height; y++ {
		for x := 0; x < cropped.Width; x++ {
			if math.IsNaN(cropped.At(x, y)) {
				continue
			}
			lon, lat := cropped.PixelCenter(x, y)
			if !planar.MultiPolygonContains(geom, orb.Point{lon, lat}) {
				cropped.Set(x, y, math.NaN())
			}
		}
	}
	return cropped, nil
}

// ClipSeries clips every slice of the series to the polygon.
func ClipSeries(s *raster.Series, geom orb.MultiPolygon) (*raster.Series, error) {
	out := &raster.Series{}
	for i, g := range s.Grids {
		clipped, err := ClipGrid(g, geom)
		if err != nil {
			return nil, err
		}
		if err := out.Add(s.Dates[i], clipped); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Pass clips the dataset to every region of one administrative level and
// writes raw plus visualization rasters under <saveRoot>/<level>/<region>/.
// The naming strategy decides between per-slice outputs and monthly means.
// One bad region never aborts the pass: every skip or failure is logged with
// the region name and the loop moves on.
func Pass(series *raster.Series, regions []AdminRegion, level, saveRoot string,
	naming modis.Naming, cm vis.Colormap, vmin, vmax float64) []Stat {

	dataBound := orb.Bound{}
	if series.Len() > 0 {
		dataBound = series.Grids[0].Bound()
	}

	var stats []Stat
	bar := progressbar.Default(int64(len(regions)), "Clipping "+level)
	for _, r := range regions {
		bar.Add(1)

		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		if !r.Valid() {
			color.Yellow("Region %s has invalid geometry, skipping", r.Name)
			continue
		}
		if !dataBound.Intersects(r.Geometry.Bound()) {
			color.Yellow("Region %s is outside the data extent, skipping", r.Name)
			continue
		}

		regionStats, err := clipOne(series, r, level, saveRoot, naming, cm, vmin, vmax)
		if err != nil {
			color.Red("Region %s failed: %s", r.Name, err.Error())
			continue
		}
		stats = append(stats, regionStats...)
	}
	bar.Finish()
	return stats
}

func clipOne(series *raster.Series, r AdminRegion, level, saveRoot string,
	naming modis.Naming, cm vis.Colormap, vmin, vmax float64) ([]Stat, error) {

	clipped, err := ClipSeries(series, r.Geometry)
	if err != nil {
		return nil, err
	}

	allEmpty := true
	for _, g := range clipped.Grids {
		if !g.AllNoData() {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		color.Yellow("Region %s covers only nodata pixels, skipping", r.Name)
		return nil, nil
	}

	outDir := filepath.Join(saveRoot, level, r.PathName())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	if naming.PerSlice {
		return writeSlices(clipped, r, level, outDir, naming, cm, vmin, vmax)
	}
	return writeMonthly(clipped, r, level, outDir, naming, cm, vmin, vmax)
}

func writeSlices(clipped *raster.Series, r AdminRegion, level, outDir string,
	naming modis.Naming, cm vis.Colormap, vmin, vmax float64) ([]Stat, error) {

	var stats []Stat
	pathName := r.PathName()
	for i, g := range clipped.Grids {
		date := clipped.Dates[i]
		if g.AllNoData() {
			color.Yellow("Region %s has no data on %s", r.Name, date.Format("2006-01-02"))
			continue
		}
		rawPath := filepath.Join(outDir, naming.SliceName(pathName, date))
		if err := raster.WriteGrid(rawPath, g); err != nil {
			return stats, err
		}
		if err := writeVisVariant(filepath.Join(outDir, naming.SliceVisName(pathName, date)), g, cm, vmin, vmax); err != nil {
			return stats, err
		}
		stats = append(stats, statFor(g, r.Name, level, int(date.Month())))
	}
	return stats, nil
}

func writeMonthly(clipped *raster.Series, r AdminRegion, level, outDir string,
	naming modis.Naming, cm vis.Colormap, vmin, vmax float64) ([]Stat, error) {

	monthly := clipped.GroupByMonth()
	var stats []Stat
	pathName := r.PathName()
	for m := time.January; m <= time.December; m++ {
		g, ok := monthly[m]
		if !ok {
			color.Yellow("Region %s has no data for month %d", r.Name, int(m))
			continue
		}
		if g.AllNoData() {
			color.Yellow("Region %s month %d is all nodata", r.Name, int(m))
			continue
		}
		rawPath := filepath.Join(outDir, naming.MonthName(pathName, m))
		if err := raster.WriteGrid(rawPath, g); err != nil {
			return stats, err
		}
		if err := writeVisVariant(filepath.Join(outDir, naming.MonthVisName(pathName, m)), g, cm, vmin, vmax); err != nil {
			return stats, err
		}
		stats = append(stats, statFor(g, r.Name, level, int(m)))
	}
	return stats, nil
}

func writeVisVariant(path string, g *raster.Grid, cm vis.Colormap, vmin, vmax float64) error {
	encoded, err := vis.Encode(g, vmin, vmax)
	if err != nil {
		color.Yellow("Skipping visualization %s: %s", filepath.Base(path), err.Error())
		return nil
	}
	return vis.WriteVis(path, encoded, cm)
}

func statFor(g *raster.Grid, name, level string, month int) Stat {
	sum, count := 0.0, 0
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}
	return Stat{Region: name, Level: level, Month: month, MeanValue: mean, ValidPixels: count}
}
