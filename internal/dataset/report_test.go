package dataset

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"coaltracker/internal"
)

func numRecord(name, country string, capacity float64) internal.Record {
	return internal.Record{
		internal.FieldPlantName:   internal.TextValue(name),
		internal.FieldCountryArea: internal.TextValue(country),
		internal.FieldCapacityMW:  internal.NumberValue(capacity),
	}
}

func TestSummarizeCapacityStats(t *testing.T) {
	data := internal.Dataset{
		numRecord("A", "X", 100),
		numRecord("B", "X", 200),
		numRecord("C", "X", 300),
		numRecord("D", "X", 400),
	}

	stats := Summarize(data).Capacity

	approx := func(name string, got, want float64) {
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	if stats.Count != 4 {
		t.Fatalf("count = %d, want 4", stats.Count)
	}
	approx("mean", stats.Mean, 250)
	approx("std", stats.Std, math.Sqrt(50000.0/3.0))
	approx("min", stats.Min, 100)
	approx("25%", stats.Q25, 175)
	approx("50%", stats.Q50, 250)
	approx("75%", stats.Q75, 325)
	approx("max", stats.Max, 400)
}

func TestSummarizeSkipsMissingCapacity(t *testing.T) {
	data := internal.Dataset{
		numRecord("A", "X", 500),
		{internal.FieldPlantName: internal.TextValue("B")},
	}

	report := Summarize(data)
	if report.Total != 2 {
		t.Errorf("total = %d, want 2", report.Total)
	}
	if report.Capacity.Count != 1 {
		t.Errorf("capacity count = %d, want 1", report.Capacity.Count)
	}
	if report.Capacity.Std != 0 {
		t.Errorf("std of a single value = %v, want 0", report.Capacity.Std)
	}
}

func TestSummarizeTopCountries(t *testing.T) {
	var data internal.Dataset
	for i := 0; i < 22; i++ {
		data = append(data, numRecord("P", fmt.Sprintf("Country%02d", i), 100))
	}
	// A dominant country must sort first.
	for i := 0; i < 5; i++ {
		data = append(data, numRecord(fmt.Sprintf("Big%d", i), "Dominania", 100))
	}

	report := Summarize(data)
	if len(report.Countries) != 20 {
		t.Fatalf("got %d countries, want the top 20", len(report.Countries))
	}
	if report.Countries[0].Key != "Dominania" || report.Countries[0].Count != 5 {
		t.Errorf("top country = %+v, want Dominania x5", report.Countries[0])
	}
	if report.MoreCountries != 3 {
		t.Errorf("more countries = %d, want 3", report.MoreCountries)
	}
}

func TestReportFormat(t *testing.T) {
	data := internal.Dataset{
		numRecord("A", "X", 600),
	}
	data[0][internal.FieldStatus] = internal.TextValue("operating")

	text := Summarize(data).Format()

	for _, want := range []string{
		"Global Coal Plant Tracker Data Summary",
		"Generated on:",
		strings.Repeat("=", 50),
		"Total Records: 1",
		"Columns:",
		"  plant_name: 1/1 non-null values",
		"Records by Country:",
		"  X: 1",
		"Records by Status:",
		"  operating: 1",
		"Capacity Statistics (MW):",
		"  mean: 600.00",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q\n%s", want, text)
		}
	}
}

func TestReportFormatMoreCountriesTail(t *testing.T) {
	var data internal.Dataset
	for i := 0; i < 23; i++ {
		data = append(data, numRecord("P", fmt.Sprintf("C%02d", i), 1))
	}

	text := Summarize(data).Format()
	if !strings.Contains(text, "... and 3 more countries") {
		t.Errorf("summary missing the overflow tail:\n%s", text)
	}
}
