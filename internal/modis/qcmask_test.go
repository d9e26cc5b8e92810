package modis

import (
	"math"
	"testing"

	"github.com/drought-guardian/drought-vis-poc/internal/raster"
)

var testTransform = [6]float64{100, 0.01, 0, 40, 0, -0.01}

func TestMaskWithQuality(t *testing.T) {
	data := raster.NewGrid(2, 2, testTransform, "")
	// Raw digital numbers around 300K scaled by 1/0.02.
	data.Set(0, 0, 15000) // 300K -> 26.85C
	data.Set(1, 0, 14000) // 280K -> 6.85C
	data.Set(0, 1, 15500)
	data.Set(1, 1, 16000)

	qc := raster.NewGrid(2, 2, testTransform, "")
	qc.Set(0, 0, 0) // good
	qc.Set(1, 0, 1) // low bit set, bad
	qc.Set(0, 1, 2) // second bit set, bad
	qc.Set(1, 1, 4) // higher bits only, good

	out, err := MaskWithQuality(data, qc, LSTScaleFactor, KelvinOffset)
	if err != nil {
		t.Fatalf("MaskWithQuality: %v", err)
	}

	if got := out.At(0, 0); math.Abs(got-26.85) > 1e-9 {
		t.Errorf("good cell = %v, want 26.85", got)
	}
	if !math.IsNaN(out.At(1, 0)) {
		t.Errorf("cell with qc=1 should be nodata, got %v", out.At(1, 0))
	}
	if !math.IsNaN(out.At(0, 1)) {
		t.Errorf("cell with qc=2 should be nodata, got %v", out.At(0, 1))
	}
	if math.IsNaN(out.At(1, 1)) {
		t.Error("cell with qc=4 should survive masking")
	}
}

func TestMaskWithQualityLowBitsAlwaysForceNodata(t *testing.T) {
	data := raster.NewGrid(1, 1, testTransform, "")
	qc := raster.NewGrid(1, 1, testTransform, "")

	for q := 0; q < 16; q++ {
		data.Set(0, 0, 15000)
		qc.Set(0, 0, float64(q))
		out, err := MaskWithQuality(data, qc, LSTScaleFactor, KelvinOffset)
		if err != nil {
			t.Fatalf("qc=%d: %v", q, err)
		}
		bad := q&0b11 != 0
		if bad && !math.IsNaN(out.At(0, 0)) {
			t.Errorf("qc=%d: expected nodata, got %v", q, out.At(0, 0))
		}
		if !bad && math.IsNaN(out.At(0, 0)) {
			t.Errorf("qc=%d: expected valid value", q)
		}
	}
}

func TestMaskWithQualityShapeMismatch(t *testing.T) {
	data := raster.NewGrid(2, 2, testTransform, "")
	qc := raster.NewGrid(3, 2, testTransform, "")
	if _, err := MaskWithQuality(data, qc, LSTScaleFactor, KelvinOffset); err == nil {
		t.Error("expected error for mismatched grid shapes")
	}
}

func TestMaskWithQualityKeepsGeoreference(t *testing.T) {
	data := raster.NewGrid(2, 2, testTransform, "PROJCS[\"test\"]")
	qc := raster.NewGrid(2, 2, testTransform, "")
	out, err := MaskWithQuality(data, qc, LSTScaleFactor, KelvinOffset)
	if err != nil {
		t.Fatalf("MaskWithQuality: %v", err)
	}
	if out.GeoTransform != data.GeoTransform {
		t.Errorf("geotransform changed: %v", out.GeoTransform)
	}
	if out.Projection != data.Projection {
		t.Errorf("projection changed: %q", out.Projection)
	}
}
