// Package dataset holds the post-acquisition stages: cleaning,
// summary reporting, and file export. Every stage returns a new
// dataset or artifact; none mutates its input.
package dataset

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"coaltracker/internal"
)

var firstNumber = regexp.MustCompile(`\d+\.?\d*`)

// Clean produces the canonical output dataset: all-empty records
// dropped, numeric fields coerced, text noise collapsed to missing,
// exact duplicates removed, and records sorted by country then plant
// with missing keys last. Clean is idempotent.
func Clean(in internal.Dataset) internal.Dataset {
	out := make(internal.Dataset, 0, len(in))
	for _, record := range in {
		cleaned := cleanRecord(record)
		if cleaned.Empty() {
			continue
		}
		out = append(out, cleaned)
	}

	out = dedupe(out)
	sortRecords(out)
	return out
}

func cleanRecord(record internal.Record) internal.Record {
	out := internal.Record{}
	for _, field := range internal.Fields {
		value := record.Get(field)
		if value.IsMissing() {
			continue
		}

		if internal.NumericFields[field] {
			if value.IsNumber() {
				out[field] = value
				continue
			}
			// Keep only the first contiguous decimal number; units
			// and footnote markers are noise, not data.
			token := firstNumber.FindString(value.Text())
			if token == "" {
				continue
			}
			parsed, err := strconv.ParseFloat(token, 64)
			if err != nil {
				continue
			}
			out[field] = internal.NumberValue(parsed)
			continue
		}

		text := strings.TrimSpace(value.Text())
		if text == "" || text == "nan" || text == "None" {
			continue
		}
		out[field] = internal.TextValue(text)
	}
	return out
}

func dedupe(in internal.Dataset) internal.Dataset {
	seen := map[string]struct{}{}
	out := make(internal.Dataset, 0, len(in))
	for _, record := range in {
		key := record.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, record)
	}
	return out
}

func sortRecords(data internal.Dataset) {
	sort.SliceStable(data, func(i, j int) bool {
		if c := compareValues(data[i].Get(internal.FieldCountryArea), data[j].Get(internal.FieldCountryArea)); c != 0 {
			return c < 0
		}
		return compareValues(data[i].Get(internal.FieldPlantName), data[j].Get(internal.FieldPlantName)) < 0
	})
}

// compareValues orders present values lexically and places missing
// ones after every present one.
func compareValues(a, b internal.Value) int {
	switch {
	case a.IsMissing() && b.IsMissing():
		return 0
	case a.IsMissing():
		return 1
	case b.IsMissing():
		return -1
	default:
		return strings.Compare(a.Text(), b.Text())
	}
}
