package modis

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MODIS acquisition dates are carried in filenames as a 7-digit year plus
// day-of-year tag, e.g. LST_Day_1KM_2024001.tif. The tag must fill a whole
// underscore-delimited segment so longer digit runs (like 8-digit calendar
// dates) are not misread as a tag plus a stray digit.
var dateTagPattern = regexp.MustCompile(`(?:^|_)(\d{7})(?:_|\.)`)

// ParseDateTag extracts the YYYYDDD tag from a filename. ok is false when the
// name does not follow the convention; callers skip the file with a warning
// instead of failing the batch.
func ParseDateTag(name string) (time.Time, bool) {
	m := dateTagPattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}, false
	}
	tag := m[1]
	year, err := strconv.Atoi(tag[:4])
	if err != nil || year < 1970 || year > 2100 {
		return time.Time{}, false
	}
	doy, err := strconv.Atoi(tag[4:])
	if err != nil || doy < 1 || doy > 366 {
		return time.Time{}, false
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1), true
}

// DateTag formats a date back to the YYYYDDD convention.
func DateTag(t time.Time) string {
	return fmt.Sprintf("%04d%03d", t.Year(), t.YearDay())
}

// QCCompanionName derives the quality-control filename paired with a data
// file: the leading product prefix is swapped for QC while the remaining
// segments, including the date tag, are preserved.
// LST_Day_1KM_2024001.tif -> QC_Day_1KM_2024001.tif
func QCCompanionName(dataName string) (string, bool) {
	base := filepath.Base(dataName)
	parts := strings.Split(strings.TrimSuffix(base, ".tif"), "_")
	if len(parts) < 2 {
		return "", false
	}
	return "QC_" + strings.Join(parts[1:], "_") + ".tif", true
}

// Naming describes how one product's outputs are named and grouped. The
// region clipper is parameterized on it instead of duplicating the loop per
// product.
type Naming struct {
	// Prefix is the product segment in output names, e.g. "Tep" or "NDVI".
	Prefix string
	// PerSlice writes one output per time slice; otherwise slices are grouped
	// into monthly means.
	PerSlice bool
	// DateTag formats a slice date for per-slice outputs.
	DateTag func(time.Time) string
}

// LSTNaming groups land-surface-temperature outputs by month.
func LSTNaming() Naming {
	return Naming{Prefix: "Tep"}
}

// NDVINaming writes one vegetation-index output per acquisition date.
func NDVINaming() Naming {
	return Naming{
		Prefix:   "NDVI",
		PerSlice: true,
		DateTag:  func(t time.Time) string { return t.Format("20060102") },
	}
}

func (n Naming) SliceName(region string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.tif", region, n.Prefix, n.DateTag(t))
}

func (n Naming) SliceVisName(region string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s_vis.tif", region, n.Prefix, n.DateTag(t))
}

func (n Naming) MonthName(region string, m time.Month) string {
	return fmt.Sprintf("%s_%s_month%d.tif", region, n.Prefix, int(m))
}

func (n Naming) MonthVisName(region string, m time.Month) string {
	return fmt.Sprintf("%s_%s_month%d_vis.tif", region, n.Prefix, int(m))
}
