package strategy

import (
	"strings"

	"coaltracker/internal"
)

// tableToRawRecords turns a header row plus data rows into raw
// records keyed by the header spellings, which the alias table then
// resolves. Cells beyond the header width and columns with blank
// headers are dropped.
func tableToRawRecords(header []string, rows [][]string) []internal.RawRecord {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(h)
	}

	out := make([]internal.RawRecord, 0, len(rows))
	for _, row := range rows {
		record := internal.RawRecord{}
		for i, cell := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			record[keys[i]] = cell
		}
		if len(record) > 0 {
			out = append(out, record)
		}
	}
	return out
}
