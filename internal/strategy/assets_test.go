package strategy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"coaltracker/internal"
)

func mkWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatal(err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func plantRows(n int) [][]any {
	rows := [][]any{{"Plant Name", "Capacity (MW)", "Country"}}
	for i := 0; i < n; i++ {
		rows = append(rows, []any{fmt.Sprintf("Plant %02d", i), 100 + i, "Testland"})
	}
	return rows
}

func TestAssetsAcceptsWorkbook(t *testing.T) {
	blob := mkWorkbook(t, plantRows(12))
	client := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		return fakeResponse(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", blob), nil
	})

	f := NewKnownAssetFetcher(client, []string{"https://example.org/tracker.xlsx"}, time.Second, 10, testLogger())
	data := f.Attempt(context.Background())

	if len(data) != 12 {
		t.Fatalf("got %d records, want 12", len(data))
	}
	if got := data[0].Get(internal.FieldPlantName).Text(); got != "Plant 00" {
		t.Errorf("first plant = %q", got)
	}
	if n, ok := data[3].Get(internal.FieldCapacityMW).Number(); ok || data[3].Get(internal.FieldCapacityMW).IsMissing() {
		// Normalization keeps capacity as text; cleaning happens later.
		t.Errorf("capacity should still be text here, got number %v", n)
	}
}

func TestAssetsRejectsSmallTables(t *testing.T) {
	// Exactly the threshold is not enough: landing pages often carry a
	// small decoy table.
	blob := mkWorkbook(t, plantRows(10))
	client := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		return fakeResponse(200, "application/vnd.ms-excel", blob), nil
	})

	f := NewKnownAssetFetcher(client, []string{"https://example.org/tracker.xlsx"}, time.Second, 10, testLogger())
	if data := f.Attempt(context.Background()); data != nil {
		t.Fatalf("got %d records, want rejection of a %d-row table", len(data), 10)
	}
}

func TestAssetsFallsThroughFailedURLs(t *testing.T) {
	csvBody := "Plant Name,Capacity (MW),Country\n"
	for i := 0; i < 11; i++ {
		csvBody += fmt.Sprintf("Plant %d,%d,Testland\n", i, 100+i)
	}

	client := newFakeClient(t, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, ".xlsx") {
			return fakeResponse(404, "text/html", nil), nil
		}
		return fakeResponse(200, "text/csv", []byte(csvBody)), nil
	})

	f := NewKnownAssetFetcher(client, []string{
		"https://example.org/broken.xlsx",
		"https://example.org/tracker.csv",
	}, time.Second, 10, testLogger())

	data := f.Attempt(context.Background())
	if len(data) != 11 {
		t.Fatalf("got %d records, want 11 from the second URL", len(data))
	}
}

func TestClassifyAsset(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		want        assetKind
	}{
		{"https://x/y.xlsx", "", assetSpreadsheet},
		{"https://x/y.csv", "", assetDelimited},
		{"https://x/y.pdf", "", assetPDF},
		{"https://docs.google.com/spreadsheets/d/abc/export?format=xlsx", "", assetSpreadsheet},
		{"https://docs.google.com/spreadsheets/d/abc/export?format=csv", "", assetDelimited},
		{"https://x/download", "text/csv; charset=utf-8", assetDelimited},
		{"https://x/download", "application/pdf", assetPDF},
		{"https://x/download", "application/octet-stream", assetUnknown},
	}

	for _, tt := range tests {
		if got := classifyAsset(tt.url, tt.contentType); got != tt.want {
			t.Errorf("classifyAsset(%q, %q) = %v, want %v", tt.url, tt.contentType, got, tt.want)
		}
	}
}

func TestSplitPDFLine(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"Plant Name\tCapacity\tCountry", 3},
		{"Riverside Plant   600   Testland", 3},
		{"single cell", 0},
	}
	for _, tt := range tests {
		cells := splitPDFLine(tt.line)
		if tt.want == 0 {
			if len(cells) >= 2 {
				t.Errorf("splitPDFLine(%q) = %v, want fewer than 2 cells", tt.line, cells)
			}
			continue
		}
		if len(cells) != tt.want {
			t.Errorf("splitPDFLine(%q) = %v, want %d cells", tt.line, cells, tt.want)
		}
	}
}
