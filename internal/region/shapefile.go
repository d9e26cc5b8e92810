package region

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/airbusgeo/godal"
	"github.com/fatih/color"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// AdminRegion is one administrative polygon, in EPSG:4326.
type AdminRegion struct {
	Name     string
	Geometry orb.MultiPolygon
}

// Valid reports whether the geometry is usable for clipping. Empty or
// degenerate polygons (zero area) are expected in real shapefiles and are
// skipped rather than treated as errors.
func (r AdminRegion) Valid() bool {
	return len(r.Geometry) > 0 && planar.Area(r.Geometry) > 0
}

// PathName sanitizes the region name for use as a directory segment.
func (r AdminRegion) PathName() string {
	var b strings.Builder
	for _, ru := range r.Name {
		switch {
		case unicode.IsLetter(ru) || unicode.IsDigit(ru):
			b.WriteRune(ru)
		case ru == '-' || ru == '_':
			b.WriteRune(ru)
		case unicode.IsSpace(ru):
			b.WriteRune('_')
		}
	}
	return b.String()
}

// LoadRegions reads every feature of the first layer of a polygon shapefile,
// reprojecting geometries to EPSG:4326. The name attribute is auto-detected
// case-insensitively when nameColumn is empty. Features without a name or
// geometry are kept (with what was read) and filtered later by the clipper,
// mirroring the per-region skip policy.
func LoadRegions(shpPath, nameColumn string) ([]AdminRegion, error) {
	godal.RegisterInternalDrivers()
	ds, err := godal.Open(shpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile %s: %w", shpPath, err)
	}
	defer ds.Close()

	layers := ds.Layers()
	if len(layers) == 0 {
		return nil, fmt.Errorf("shapefile %s has no layers", shpPath)
	}
	layer := layers[0]

	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, fmt.Errorf("failed to create EPSG:4326 reference: %w", err)
	}
	defer wgs84.Close()

	var regions []AdminRegion
	for {
		feat := layer.NextFeature()
		if feat == nil {
			break
		}

		name := featureName(feat, nameColumn)

		geom := feat.Geometry()
		if geom == nil {
			regions = append(regions, AdminRegion{Name: name})
			feat.Close()
			continue
		}

		mp, err := toMultiPolygon(geom, wgs84)
		feat.Close()
		if err != nil {
			color.Yellow("Region %q: %s", name, err.Error())
			regions = append(regions, AdminRegion{Name: name})
			continue
		}
		regions = append(regions, AdminRegion{Name: name, Geometry: mp})
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("shapefile %s has no features", shpPath)
	}
	return regions, nil
}

// featureName picks the requested attribute, or the first field whose name
// contains "name" case-insensitively.
func featureName(feat *godal.Feature, nameColumn string) string {
	fields := feat.Fields()
	if nameColumn != "" {
		if f, ok := fields[nameColumn]; ok {
			return f.String()
		}
		return ""
	}
	for key, f := range fields {
		if strings.Contains(strings.ToLower(key), "name") {
			return f.String()
		}
	}
	return ""
}

func toMultiPolygon(geom *godal.Geometry, wgs84 *godal.SpatialRef) (orb.MultiPolygon, error) {
	gj, err := geom.GeoJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to export geometry: %w", err)
	}
	parsed, err := geojson.UnmarshalGeometry([]byte(gj))
	if err != nil {
		return nil, fmt.Errorf("failed to parse geometry: %w", err)
	}

	var mp orb.MultiPolygon
	switch g := parsed.Geometry().(type) {
	case orb.Polygon:
		mp = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		mp = g
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}

	srcSR := geom.SpatialRef()
	if srcSR == nil {
		return mp, nil
	}
	defer srcSR.Close()
	if srcSR.IsSame(wgs84) {
		return mp, nil
	}

	tr, err := godal.NewTransform(srcSR, wgs84)
	if err != nil {
		// No projection info in the shapefile; assume geographic coordinates.
		return mp, nil
	}
	defer tr.Close()

	for _, poly := range mp {
		for _, ring := range poly {
			xs := make([]float64, len(ring))
			ys := make([]float64, len(ring))
			for i, pt := range ring {
				xs[i], ys[i] = pt[0], pt[1]
			}
			if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
				return nil, fmt.Errorf("failed to reproject geometry: %w", err)
			}
			for i := range ring {
				ring[i][0], ring[i][1] = xs[i], ys[i]
			}
		}
	}
	return mp, nil
}
