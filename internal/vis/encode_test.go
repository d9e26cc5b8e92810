package vis

import (
	"math"
	"testing"

	"github.com/drought-guardian/drought-vis-poc/internal/raster"
)

var testTransform = [6]float64{100, 0.5, 0, 40, 0, -0.5}

func TestEncodeDegenerateRange(t *testing.T) {
	g := raster.NewGrid(2, 2, testTransform, "")
	g.Set(0, 0, 20)

	if _, err := Encode(g, 20, 20); err == nil {
		t.Error("expected error for vmin == vmax")
	}
	if _, err := Encode(g, 30, 20); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestEncodeNoDataMapsToZeroAndBack(t *testing.T) {
	g := raster.NewGrid(2, 2, testTransform, "")
	g.Set(0, 0, 5)
	g.Set(1, 1, 15)

	out, err := Encode(g, 0, 20)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for i, raw := range g.Data {
		encoded := out.Data[i]
		if math.IsNaN(raw) && encoded != 0 {
			t.Errorf("cell %d: nodata encoded as %d, want 0", i, encoded)
		}
		if !math.IsNaN(raw) && encoded == 0 {
			t.Errorf("cell %d: valid value %v encoded as nodata", i, raw)
		}
	}
}

func TestEncodeRoundTripWithinQuantizationStep(t *testing.T) {
	g := raster.NewGrid(16, 16, testTransform, "")
	vmin, vmax := -12.5, 37.5
	for i := range g.Data {
		g.Data[i] = vmin + (vmax-vmin)*float64(i)/255
	}

	out, err := Encode(g, vmin, vmax)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	step := out.QuantizationStep()
	for i, raw := range g.Data {
		decoded, ok := out.Decode(out.Data[i])
		if !ok {
			t.Fatalf("cell %d: valid cell decoded as nodata", i)
		}
		if math.Abs(decoded-raw) > step {
			t.Errorf("cell %d: decoded %v, original %v, off by more than %v", i, decoded, raw, step)
		}
	}
}

func TestEncodeClampsOutOfRangeValues(t *testing.T) {
	g := raster.NewGrid(2, 1, testTransform, "")
	g.Set(0, 0, -1000)
	g.Set(1, 0, 1000)

	out, err := Encode(g, 0, 10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out.Data[0] != 1 {
		t.Errorf("below-range value encoded as %d, want 1", out.Data[0])
	}
	if out.Data[1] != 255 {
		t.Errorf("above-range value encoded as %d, want 255", out.Data[1])
	}
}

func TestEncodeEndpoints(t *testing.T) {
	g := raster.NewGrid(2, 1, testTransform, "")
	g.Set(0, 0, 0)
	g.Set(1, 0, 10)

	out, err := Encode(g, 0, 10)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out.Data[0] != 1 {
		t.Errorf("vmin encoded as %d, want 1", out.Data[0])
	}
	if out.Data[1] != 255 {
		t.Errorf("vmax encoded as %d, want 255", out.Data[1])
	}
}
