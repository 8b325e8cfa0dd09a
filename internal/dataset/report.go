package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"coaltracker/internal"
)

const topCountries = 20

type FieldCount struct {
	Field internal.Field
	Count int
}

type GroupCount struct {
	Key   string
	Count int
}

// CapacityStats mirrors a describe() over capacity_mw: sample
// standard deviation, linearly interpolated quartiles.
type CapacityStats struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

type Report struct {
	GeneratedAt   time.Time
	Total         int
	FieldCounts   []FieldCount
	Countries     []GroupCount
	MoreCountries int
	Statuses      []GroupCount
	Capacity      CapacityStats
}

// Summarize derives the run report from a cleaned dataset. Read-only.
func Summarize(data internal.Dataset) Report {
	report := Report{
		GeneratedAt: time.Now(),
		Total:       len(data),
	}

	for _, field := range internal.Fields {
		count := 0
		for _, record := range data {
			if !record.Get(field).IsMissing() {
				count++
			}
		}
		report.FieldCounts = append(report.FieldCounts, FieldCount{Field: field, Count: count})
	}

	countries := groupCounts(data, internal.FieldCountryArea)
	if len(countries) > topCountries {
		report.MoreCountries = len(countries) - topCountries
		countries = countries[:topCountries]
	}
	report.Countries = countries
	report.Statuses = groupCounts(data, internal.FieldStatus)

	var capacities []float64
	for _, record := range data {
		if n, ok := record.Get(internal.FieldCapacityMW).Number(); ok {
			capacities = append(capacities, n)
		}
	}
	report.Capacity = describe(capacities)

	return report
}

func groupCounts(data internal.Dataset, field internal.Field) []GroupCount {
	counts := map[string]int{}
	for _, record := range data {
		value := record.Get(field)
		if value.IsMissing() {
			continue
		}
		counts[value.Text()]++
	}

	out := make([]GroupCount, 0, len(counts))
	for key, count := range counts {
		out = append(out, GroupCount{Key: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func describe(values []float64) CapacityStats {
	stats := CapacityStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	stats.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		ss := 0.0
		for _, v := range sorted {
			d := v - stats.Mean
			ss += d * d
		}
		stats.Std = math.Sqrt(ss / float64(len(sorted)-1))
	}

	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Q25 = quantile(sorted, 0.25)
	stats.Q50 = quantile(sorted, 0.50)
	stats.Q75 = quantile(sorted, 0.75)
	return stats
}

// quantile interpolates linearly between order statistics.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Format renders the report as the labeled-section summary text.
func (r Report) Format() string {
	var b strings.Builder

	b.WriteString("Global Coal Plant Tracker Data Summary\n")
	fmt.Fprintf(&b, "Generated on: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "Total Records: %d\n\n", r.Total)

	b.WriteString("Columns:\n")
	for _, fc := range r.FieldCounts {
		fmt.Fprintf(&b, "  %s: %d/%d non-null values\n", fc.Field, fc.Count, r.Total)
	}
	b.WriteString("\n")

	b.WriteString("Records by Country:\n")
	for _, gc := range r.Countries {
		fmt.Fprintf(&b, "  %s: %d\n", gc.Key, gc.Count)
	}
	if r.MoreCountries > 0 {
		fmt.Fprintf(&b, "  ... and %d more countries\n", r.MoreCountries)
	}
	b.WriteString("\n")

	b.WriteString("Records by Status:\n")
	for _, gc := range r.Statuses {
		fmt.Fprintf(&b, "  %s: %d\n", gc.Key, gc.Count)
	}
	b.WriteString("\n")

	b.WriteString("Capacity Statistics (MW):\n")
	fmt.Fprintf(&b, "  count: %.2f\n", float64(r.Capacity.Count))
	if r.Capacity.Count > 0 {
		fmt.Fprintf(&b, "  mean: %.2f\n", r.Capacity.Mean)
		fmt.Fprintf(&b, "  std: %.2f\n", r.Capacity.Std)
		fmt.Fprintf(&b, "  min: %.2f\n", r.Capacity.Min)
		fmt.Fprintf(&b, "  25%%: %.2f\n", r.Capacity.Q25)
		fmt.Fprintf(&b, "  50%%: %.2f\n", r.Capacity.Q50)
		fmt.Fprintf(&b, "  75%%: %.2f\n", r.Capacity.Q75)
		fmt.Fprintf(&b, "  max: %.2f\n", r.Capacity.Max)
	}

	return b.String()
}
