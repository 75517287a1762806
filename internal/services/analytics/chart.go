package analytics

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/folio/internal/models"
)

// bucketPalette cycles through a fixed color order so identical reports
// render identical charts.
var bucketPalette = []string{
	"2563eb", // blue-600
	"16a34a", // green-600
	"f59e0b", // amber-500
	"dc2626", // red-600
	"7c3aed", // violet-600
	"0891b2", // cyan-600
	"9ca3af", // gray-400
}

// RenderAllocationChart renders the asset-class allocation of a report as a
// PNG donut chart. Returns raw PNG bytes.
func RenderAllocationChart(report *models.AnalyticsReport) ([]byte, error) {
	if len(report.AllocationByAssetClass) == 0 {
		return nil, fmt.Errorf("report has no allocation data")
	}

	buckets := make([]string, 0, len(report.AllocationByAssetClass))
	for bucket := range report.AllocationByAssetClass {
		buckets = append(buckets, bucket)
	}
	sort.Strings(buckets)

	values := make([]chart.Value, 0, len(buckets))
	for i, bucket := range buckets {
		pct := report.AllocationByAssetClass[bucket]
		if pct <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", bucket, pct),
			Value: pct,
			Style: chart.Style{
				FillColor: drawing.ColorFromHex(bucketPalette[i%len(bucketPalette)]),
			},
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("report has no positive allocation buckets")
	}

	graph := chart.DonutChart{
		Title:  "Asset Allocation",
		Width:  600,
		Height: 400,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
