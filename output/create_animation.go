package output

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"strings"

	"github.com/drought-guardian/drought-vis-poc/internal/raster"
	"github.com/drought-guardian/drought-vis-poc/internal/vis"
	"github.com/fogleman/gg"
	"github.com/icza/mjpeg"
)

// CreateAnimation renders the series as an AVI time-lapse, one frame per
// date, all frames sharing the same [vmin, vmax] color range so frames are
// visually comparable.
func CreateAnimation(series *raster.Series, cm vis.Colormap, vmin, vmax float64, outputPath string) error {
	if series.Len() == 0 {
		return fmt.Errorf("no time slices to animate")
	}
	if !strings.Contains(outputPath, ".avi") {
		outputPath += ".avi"
	}

	width := int32(series.Grids[0].Width)
	height := int32(series.Grids[0].Height)
	writer, err := mjpeg.New(outputPath, width, height, 2)
	if err != nil {
		return err
	}
	defer writer.Close()

	for _, g := range series.Grids {
		encoded, err := vis.Encode(g, vmin, vmax)
		if err != nil {
			return fmt.Errorf("failed to encode frame: %w", err)
		}

		dc := gg.NewContext(g.Width, g.Height)
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				c := cm[encoded.Data[y*g.Width+x]]
				dc.SetRGBA255(int(c[0]), int(c[1]), int(c[2]), int(c[3]))
				dc.SetPixel(x, y)
			}
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: 100}); err != nil {
			return err
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}
