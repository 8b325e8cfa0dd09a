package internal

import (
	"strconv"
	"strings"
)

// Field is a canonical column name of the tracker schema.
type Field string

const (
	FieldPlantName         Field = "plant_name"
	FieldUnitName          Field = "unit_name"
	FieldPlantUnitName     Field = "plant_unit_name"
	FieldOwner             Field = "owner"
	FieldParentCompany     Field = "parent_company"
	FieldCapacityMW        Field = "capacity_mw"
	FieldStatus            Field = "status"
	FieldStartYear         Field = "start_year"
	FieldRetiredYear       Field = "retired_year"
	FieldRegion            Field = "region"
	FieldCountryArea       Field = "country_area"
	FieldSubnationalUnit   Field = "subnational_unit"
	FieldLatitude          Field = "latitude"
	FieldLongitude         Field = "longitude"
	FieldTechnology        Field = "technology"
	FieldFuelType          Field = "fuel_type"
	FieldAnnouncedYear     Field = "announced_year"
	FieldConstructionStart Field = "construction_start"
	FieldOperatingYear     Field = "operating_year"
	FieldMothballedYear    Field = "mothballed_year"
	FieldCancelledYear     Field = "cancelled_year"
	FieldWikiURL           Field = "wiki_url"
)

// Fields lists every canonical column in export order.
var Fields = []Field{
	FieldPlantName,
	FieldUnitName,
	FieldPlantUnitName,
	FieldOwner,
	FieldParentCompany,
	FieldCapacityMW,
	FieldStatus,
	FieldStartYear,
	FieldRetiredYear,
	FieldRegion,
	FieldCountryArea,
	FieldSubnationalUnit,
	FieldLatitude,
	FieldLongitude,
	FieldTechnology,
	FieldFuelType,
	FieldAnnouncedYear,
	FieldConstructionStart,
	FieldOperatingYear,
	FieldMothballedYear,
	FieldCancelledYear,
	FieldWikiURL,
}

// NumericFields are coerced to numbers by the cleaner.
var NumericFields = map[Field]bool{
	FieldCapacityMW:        true,
	FieldStartYear:         true,
	FieldRetiredYear:       true,
	FieldAnnouncedYear:     true,
	FieldConstructionStart: true,
	FieldOperatingYear:     true,
	FieldMothballedYear:    true,
	FieldCancelledYear:     true,
	FieldLatitude:          true,
	FieldLongitude:         true,
}

// RawRecord is one source-shaped row before normalization. Keys are
// whatever the source calls its columns; values are scalars decoded
// from JSON or cell text.
type RawRecord map[string]any

type valueKind int

const (
	kindMissing valueKind = iota
	kindText
	kindNumber
)

// Value is one canonical cell: missing, trimmed text, or a cleaned
// number. The zero Value is missing.
type Value struct {
	kind valueKind
	text string
	num  float64
}

// TextValue trims s; an empty result is the missing value.
func TextValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	return Value{kind: kindText, text: s}
}

func NumberValue(f float64) Value {
	return Value{kind: kindNumber, num: f}
}

func (v Value) IsMissing() bool { return v.kind == kindMissing }

func (v Value) IsNumber() bool { return v.kind == kindNumber }

// Number reports the cleaned numeric value, if any.
func (v Value) Number() (float64, bool) {
	if v.kind != kindNumber {
		return 0, false
	}
	return v.num, true
}

// Text renders the cell for export: "" for missing, the stored text,
// or the shortest exact decimal form of a number.
func (v Value) Text() string {
	switch v.kind {
	case kindText:
		return v.text
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Record is one canonical row. Fields not present in the map are
// missing; callers must treat both absence and a missing Value alike.
type Record map[Field]Value

func (r Record) Get(f Field) Value {
	return r[f]
}

// Empty reports whether every canonical field is missing.
func (r Record) Empty() bool {
	for _, f := range Fields {
		if !r[f].IsMissing() {
			return false
		}
	}
	return true
}

// Key is the full-record identity used for exact dedupe.
func (r Record) Key() string {
	parts := make([]string, 0, len(Fields))
	for _, f := range Fields {
		parts = append(parts, r[f].Text())
	}
	return strings.Join(parts, "\x1f")
}

// Dataset is an ordered sequence of canonical records. Stages hand
// datasets over wholesale; each stage returns a new one.
type Dataset []Record
