package output

import (
	"fmt"
	"os"

	"github.com/drought-guardian/drought-vis-poc/internal/region"
	"github.com/gocarina/gocsv"
)

// WriteRegionStats dumps the per-region monthly statistics gathered during a
// clipping run to a CSV report.
func WriteRegionStats(stats []region.Stat, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create stats file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&stats, file); err != nil {
		return fmt.Errorf("failed to write stats csv: %w", err)
	}
	return nil
}
