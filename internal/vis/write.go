package vis

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// WriteVis stores the paletted raster as an LZW-compressed uint8 GeoTIFF with
// the colormap embedded and scale/offset tags sufficient to approximately
// invert the encoding: value = (encoded-1)/254*(vmax-vmin)+vmin.
func WriteVis(path string, b *ByteGrid, cm Colormap) error {
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Byte, b.Width, b.Height,
		godal.CreationOption("TILED=YES", "COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(b.GeoTransform); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	if b.Projection != "" {
		sr, err := godal.NewSpatialRefFromWKT(b.Projection)
		if err != nil {
			return fmt.Errorf("failed to parse projection: %w", err)
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(0); err != nil {
		return fmt.Errorf("failed to set nodata: %w", err)
	}

	ct := godal.ColorTable{PaletteInterp: godal.RGBPalette}
	ct.Entries = make([][4]int16, 256)
	for i, c := range cm {
		ct.Entries[i] = [4]int16{int16(c[0]), int16(c[1]), int16(c[2]), int16(c[3])}
	}
	if err := band.SetColorTable(ct); err != nil {
		return fmt.Errorf("failed to set color table: %w", err)
	}

	tags := map[string]string{
		"scale_factor": fmt.Sprintf("%g", (b.VMax-b.VMin)/255),
		"add_offset":   fmt.Sprintf("%g", b.VMin),
		"actual_range": fmt.Sprintf("%g,%g", b.VMin, b.VMax),
	}
	for k, v := range tags {
		if err := ds.SetMetadata(k, v); err != nil {
			return fmt.Errorf("failed to set %s tag: %w", k, err)
		}
	}

	if err := band.Write(0, 0, b.Data, b.Width, b.Height); err != nil {
		return fmt.Errorf("failed to write raster data: %w", err)
	}
	return nil
}
