package output

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"gonum.org/v1/gonum/stat"
)

// IndexStats is one CSV row summarizing a computed index map for a session.
type IndexStats struct {
	SessionDate string  `csv:"session_date"`
	Index       string  `csv:"index"`
	Min         float64 `csv:"min"`
	Max         float64 `csv:"max"`
	Mean        float64 `csv:"mean"`
	StdDev      float64 `csv:"std_dev"`
	ValidPixels int     `csv:"valid_pixels"`
	NaNPixels   int     `csv:"nan_pixels"`
}

// ComputeIndexStats summarizes an index plane, counting undefined pixels
// separately so downstream QA can spot sessions dominated by degenerate
// denominators.
func ComputeIndexStats(sessionDate, indexName string, plane raster.Plane) IndexStats {
	valid := make([]float64, 0, len(plane.Data))
	nanCount := 0
	for _, v := range plane.Data {
		f := float64(v)
		if math.IsNaN(f) {
			nanCount++
			continue
		}
		valid = append(valid, f)
	}

	stats := IndexStats{
		SessionDate: sessionDate,
		Index:       indexName,
		ValidPixels: len(valid),
		NaNPixels:   nanCount,
	}
	if len(valid) == 0 {
		return stats
	}

	sort.Float64s(valid)
	stats.Min = valid[0]
	stats.Max = valid[len(valid)-1]
	stats.Mean = stat.Mean(valid, nil)
	stats.StdDev = stat.StdDev(valid, nil)
	return stats
}

// CreateIndexStatsCSV writes the accumulated per-session rows in a stable
// order (date, then index name).
func CreateIndexStatsCSV(rows []IndexStats, outputPath string) error {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SessionDate != rows[j].SessionDate {
			return rows[i].SessionDate < rows[j].SessionDate
		}
		return rows[i].Index < rows[j].Index
	})

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create stats CSV: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write stats CSV: %w", err)
	}
	return nil
}
