package geoserver

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DataType classifies a published raster by the product segment of its
// filename.
type DataType string

const (
	DataTypeLST     DataType = "LST"
	DataTypeNDVI    DataType = "NDVI"
	DataTypeUnknown DataType = "UNKNOWN"
)

func DetectDataType(fileName string) DataType {
	switch {
	case strings.Contains(fileName, "_Tep_"):
		return DataTypeLST
	case strings.Contains(fileName, "_NDVI_"):
		return DataTypeNDVI
	default:
		return DataTypeUnknown
	}
}

// RegionType is derived from the output path layout. Classifying by path
// substring is a documented external contract inherited from the output tree
// layout; it can mis-classify paths that happen to contain these words.
type RegionType string

const (
	RegionProvince RegionType = "province"
	RegionCity     RegionType = "city"
	RegionUnknown  RegionType = "unknown"
)

func DetectRegionType(path string) RegionType {
	switch {
	case strings.Contains(path, "province"):
		return RegionProvince
	case strings.Contains(path, "city"):
		return RegionCity
	default:
		return RegionUnknown
	}
}

// LayerPlan holds the deterministic store/layer naming for one raster so
// repeated publishing runs are idempotent.
type LayerPlan struct {
	Store    string
	Layer    string
	Title    string
	GroupKey string
}

// visType is "vis" for paletted visualization rasters, "raw" otherwise.
func detectVisType(fileName string) string {
	if strings.Contains(fileName, "_vis") {
		return "vis"
	}
	return "raw"
}

// PlanLayer derives the publishing names from a raster's path. File names
// with fewer than three underscore segments do not follow the output
// convention and are rejected.
func PlanLayer(tifPath string, dataType DataType) (*LayerPlan, error) {
	fileName := filepath.Base(tifPath)
	parts := strings.Split(strings.TrimSuffix(fileName, ".tif"), "_")
	if len(parts) < 3 {
		return nil, fmt.Errorf("cannot parse file name %s", fileName)
	}

	regionName := parts[0]
	regionType := DetectRegionType(tifPath)
	visType := detectVisType(fileName)

	dateInfo := "unknown_date"
	for _, part := range parts {
		if strings.HasPrefix(part, "202") || strings.HasPrefix(part, "month") {
			dateInfo = part
			break
		}
	}

	var title string
	if dataType == DataTypeLST {
		title = fmt.Sprintf("Land Surface Temperature %s %s %s", regionName, dateInfo, visType)
	} else {
		title = fmt.Sprintf("Vegetation Index %s %s %s", regionName, dateInfo, visType)
	}

	return &LayerPlan{
		Store:    fmt.Sprintf("%s_%s_%s_%s_%s_store", regionName, regionType, dataType, dateInfo, visType),
		Layer:    fmt.Sprintf("%s_%s_%s_%s", dataType, regionName, dateInfo, visType),
		Title:    title,
		GroupKey: fmt.Sprintf("%s_%s_%s", dataType, regionName, visType),
	}, nil
}
