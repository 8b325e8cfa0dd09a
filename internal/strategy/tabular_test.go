package strategy

import "testing"

func TestTableToRawRecords(t *testing.T) {
	header := []string{" Plant Name ", "", "Country"}
	rows := [][]string{
		{"Riverside", "ignored", "Testland", "overflow"},
		{},
	}

	raws := tableToRawRecords(header, rows)
	if len(raws) != 1 {
		t.Fatalf("got %d records, want 1", len(raws))
	}
	if raws[0]["Plant Name"] != "Riverside" {
		t.Errorf("header not trimmed: %v", raws[0])
	}
	if _, ok := raws[0][""]; ok {
		t.Error("blank-header column should be dropped")
	}
	if len(raws[0]) != 2 {
		t.Errorf("got %d cells, want 2 (overflow dropped)", len(raws[0]))
	}
}
