package raster

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
)

// openQuiet opens a dataset while swallowing GDAL warnings, which are common
// on MODIS tiles with exotic metadata.
func openQuiet(path string) (*godal.Dataset, error) {
	return godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
}

// ReadGrid loads band 1 of a GeoTIFF into a Grid, mapping the file's nodata
// value to NaN.
func ReadGrid(path string) (*Grid, error) {
	ds, err := openQuiet(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	return gridFromDataset(ds)
}

func gridFromDataset(ds *godal.Dataset) (*Grid, error) {
	structure := ds.Structure()
	width, height := structure.SizeX, structure.SizeY

	geoTransform, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get geotransform: %w", err)
	}

	projection := ""
	if sr := ds.SpatialRef(); sr != nil {
		wkt, err := sr.WKT()
		if err == nil {
			projection = wkt
		}
		sr.Close()
	}

	band := ds.Bands()[0]
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %w", err)
	}

	if nodata, ok := band.NoData(); ok {
		for i, v := range data {
			if v == nodata {
				data[i] = math.NaN()
			}
		}
	}

	return &Grid{
		Width:        width,
		Height:       height,
		GeoTransform: geoTransform,
		Projection:   projection,
		Data:         data,
	}, nil
}

// WriteGrid stores the grid as a tiled float32 GeoTIFF with NaN nodata.
func WriteGrid(path string, g *Grid) error {
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, g.Width, g.Height,
		godal.CreationOption("TILED=YES"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(g.GeoTransform); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	if err := setProjection(ds, g.Projection); err != nil {
		return err
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(math.NaN()); err != nil {
		return fmt.Errorf("failed to set nodata: %w", err)
	}

	buf := make([]float32, len(g.Data))
	for i, v := range g.Data {
		buf[i] = float32(v)
	}
	if err := band.Write(0, 0, buf, g.Width, g.Height); err != nil {
		return fmt.Errorf("failed to write raster data: %w", err)
	}
	return nil
}

func setProjection(ds *godal.Dataset, wkt string) error {
	if wkt == "" {
		return nil
	}
	sr, err := godal.NewSpatialRefFromWKT(wkt)
	if err != nil {
		return fmt.Errorf("failed to parse projection: %w", err)
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("failed to set projection: %w", err)
	}
	return nil
}

// ReadGridWGS84 loads a GeoTIFF and warps it to EPSG:4326 in memory, so
// every slice entering a series shares the canonical geographic CRS.
func ReadGridWGS84(path string) (*Grid, error) {
	ds, err := openQuiet(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	warped, err := godal.Warp("", []*godal.Dataset{ds},
		[]string{"-t_srs", "EPSG:4326", "-of", "MEM"})
	if err != nil {
		return nil, fmt.Errorf("failed to warp %s to EPSG:4326: %w", path, err)
	}
	defer warped.Close()

	return gridFromDataset(warped)
}
