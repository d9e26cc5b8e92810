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

// MOD11A2 digital numbers are Kelvin scaled by 0.02; outputs are Celsius.
const (
	LSTScaleFactor = 0.02
	KelvinOffset   = 273.15
)

// qcBadBits are the two mandatory-QA bits; any nonzero value marks a pixel
// that must not enter the aggregation.
const qcBadBits = 0b11

// MaskWithQuality converts a raw digital-number grid to physical units and
// nulls every cell whose QC flag has nonzero low bits. The result keeps the
// input's geotransform and CRS.
func MaskWithQuality(data, qc *raster.Grid, scale, offset float64) (*raster.Grid, error) {
	if !data.SameShape(qc) {
		return nil, fmt.Errorf("qc grid %dx%d does not match data grid %dx%d",
			qc.Width, qc.Height, data.Width, data.Height)
	}

	out := raster.NewGrid(data.Width, data.Height, data.GeoTransform, data.Projection)
	for i, v := range data.Data {
		q := qc.Data[i]
		if math.IsNaN(v) || math.IsNaN(q) {
			continue
		}
		if int64(q)&qcBadBits != 0 {
			continue
		}
		out.Data[i] = v*scale - offset
	}
	return out, nil
}

// BatchMaskQuality runs the quality-mask filter over every LST_*.tif in
// dataDir, locating the QC companion in qcDir by the filename convention.
// Missing companions and unparseable names are skipped with a warning.
func BatchMaskQuality(dataDir, qcDir, outputDir string) error {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dataDir, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "LST_") && strings.HasSuffix(e.Name(), ".tif") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	bar := progressbar.Default(int64(len(names)), "Masking "+filepath.Base(dataDir))
	for _, name := range names {
		bar.Add(1)

		if _, ok := ParseDateTag(name); !ok {
			color.Yellow("Skipping %s: no date tag in filename", name)
			continue
		}
		qcName, ok := QCCompanionName(name)
		if !ok {
			color.Yellow("Skipping %s: cannot derive QC companion name", name)
			continue
		}
		qcPath := filepath.Join(qcDir, qcName)
		if _, err := os.Stat(qcPath); err != nil {
			color.Yellow("Missing QC file %s, skipping %s", qcName, name)
			continue
		}

		if err := maskFile(filepath.Join(dataDir, name), qcPath, filepath.Join(outputDir, name)); err != nil {
			color.Red("Failed to mask %s: %s", name, err.Error())
		}
	}
	bar.Finish()
	return nil
}

func maskFile(dataPath, qcPath, outputPath string) error {
	data, err := raster.ReadGrid(dataPath)
	if err != nil {
		return err
	}
	qc, err := raster.ReadGrid(qcPath)
	if err != nil {
		return err
	}
	masked, err := MaskWithQuality(data, qc, LSTScaleFactor, KelvinOffset)
	if err != nil {
		return err
	}
	return raster.WriteGrid(outputPath, masked)
}
