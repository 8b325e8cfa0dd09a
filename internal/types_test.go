package internal

import "testing"

func TestTextValueTrims(t *testing.T) {
	if got := TextValue("  Riverside  ").Text(); got != "Riverside" {
		t.Errorf("got %q", got)
	}
	if !TextValue("   ").IsMissing() {
		t.Error("whitespace-only text should be missing")
	}
}

func TestNumberValueText(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{600, "600"},
		{12.5, "12.5"},
		{0.25, "0.25"},
	}
	for _, tt := range tests {
		if got := NumberValue(tt.in).Text(); got != tt.want {
			t.Errorf("NumberValue(%v).Text() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordEmpty(t *testing.T) {
	if !(Record{}).Empty() {
		t.Error("zero record should be empty")
	}
	if !(Record{FieldPlantName: TextValue("  ")}).Empty() {
		t.Error("record of missing values should be empty")
	}
	if (Record{FieldPlantName: TextValue("A")}).Empty() {
		t.Error("record with a value should not be empty")
	}
}

func TestRecordKeyDistinguishesFields(t *testing.T) {
	a := Record{FieldPlantName: TextValue("X")}
	b := Record{FieldUnitName: TextValue("X")}
	if a.Key() == b.Key() {
		t.Error("same text in different fields must not collide")
	}

	c := Record{FieldPlantName: TextValue("X")}
	if a.Key() != c.Key() {
		t.Error("identical records must share a key")
	}
}
