package geoserver

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// BatchPublish walks the output tree and publishes every GeoTIFF, grouped by
// data type so visualization layers go up before the raw ones of the same
// product. One bad file or one failed REST call skips that resource only.
func BatchPublish(p *Publisher, rootDir, workspace string, cleanFirst bool) error {
	if err := p.CreateWorkspace(workspace); err != nil {
		return fmt.Errorf("failed to prepare workspace: %w", err)
	}
	if cleanFirst {
		if err := p.CleanWorkspace(workspace); err != nil {
			return fmt.Errorf("failed to clean workspace: %w", err)
		}
	}

	var lstVis, lstRaw, ndviVis, ndviRaw, unknown []string
	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tif") {
			return nil
		}
		switch DetectDataType(d.Name()) {
		case DataTypeLST:
			if detectVisType(d.Name()) == "vis" {
				lstVis = append(lstVis, path)
			} else {
				lstRaw = append(lstRaw, path)
			}
		case DataTypeNDVI:
			if detectVisType(d.Name()) == "vis" {
				ndviVis = append(ndviVis, path)
			} else {
				ndviRaw = append(ndviRaw, path)
			}
		default:
			unknown = append(unknown, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", rootDir, err)
	}

	fmt.Printf("Found LST vis: %d, LST raw: %d, NDVI vis: %d, NDVI raw: %d\n",
		len(lstVis), len(lstRaw), len(ndviVis), len(ndviRaw))
	if len(unknown) > 0 {
		color.Yellow("Found %d rasters of unknown data type, skipping them", len(unknown))
	}

	groups := make(map[string][]string)
	publishSet(p, lstVis, workspace, DataTypeLST, "Publishing LST vis", groups)
	publishSet(p, lstRaw, workspace, DataTypeLST, "Publishing LST raw", groups)
	publishSet(p, ndviVis, workspace, DataTypeNDVI, "Publishing NDVI vis", groups)
	publishSet(p, ndviRaw, workspace, DataTypeNDVI, "Publishing NDVI raw", groups)

	fmt.Printf("Batch publishing finished, %d layer groups populated\n", len(groups))
	return nil
}

func publishSet(p *Publisher, paths []string, workspace string, dataType DataType, desc string, groups map[string][]string) {
	if len(paths) == 0 {
		return
	}
	bar := progressbar.Default(int64(len(paths)), desc)
	for _, tifPath := range paths {
		bar.Add(1)

		plan, err := PlanLayer(tifPath, dataType)
		if err != nil {
			color.Yellow("Skipping %s: %s", filepath.Base(tifPath), err.Error())
			continue
		}
		if err := p.CreateLayer(workspace, plan.Store, plan.Layer, plan.Title, tifPath); err != nil {
			color.Red("Failed to publish %s: %s", plan.Layer, err.Error())
			continue
		}
		groups[plan.GroupKey] = append(groups[plan.GroupKey], plan.Layer)
	}
	bar.Finish()
}
