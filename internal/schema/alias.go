// Package schema decides whether a raw payload looks like tracker
// data and maps its arbitrarily named columns onto the canonical
// 22-field record shape.
package schema

import (
	"fmt"
	"strconv"

	"coaltracker/internal"
)

type fieldAliases struct {
	field   internal.Field
	aliases []string
}

// aliasTable maps each canonical field to its accepted raw spellings,
// most specific first. Resolution is a flat priority-ordered lookup:
// the first alias present in the raw record wins, case-sensitively,
// and later aliases are not consulted even when the won value is
// empty.
var aliasTable = []fieldAliases{
	{internal.FieldPlantName, []string{"plant_name", "plant", "name", "facility_name", "plant_id", "plantName", "Plant Name", "Plant", "Facility"}},
	{internal.FieldUnitName, []string{"unit_name", "unit", "unit_id", "unitName", "Unit Name", "Unit"}},
	{internal.FieldPlantUnitName, []string{"plant_unit_name", "tracker_id", "id", "Plant/Unit Name"}},
	{internal.FieldOwner, []string{"owner", "Owner", "owner_company", "operating_company", "operator", "Operator"}},
	{internal.FieldParentCompany, []string{"parent_company", "parent", "Parent Company", "Parent", "ultimate_owner", "holding_company"}},
	{internal.FieldCapacityMW, []string{"capacity_mw", "capacity", "mw", "MW", "Capacity (MW)", "power_mw", "rated_capacity", "nameplate_capacity"}},
	{internal.FieldStatus, []string{"status", "Status", "plant_status", "current_status", "operational_status"}},
	{internal.FieldStartYear, []string{"start_year", "start", "Start Year", "online_year", "commercial_operation", "operation_start"}},
	{internal.FieldRetiredYear, []string{"retired_year", "retired", "Retired Year", "retirement_year", "closure_year", "shutdown_year"}},
	{internal.FieldRegion, []string{"region", "Region", "area", "geographic_region"}},
	{internal.FieldCountryArea, []string{"country_area", "country", "Country", "Country/Area", "nation", "country_name"}},
	{internal.FieldSubnationalUnit, []string{"subnational_unit", "state", "province", "State/Province", "Subnational unit", "administrative_unit", "locality"}},
	{internal.FieldLatitude, []string{"latitude", "lat", "Latitude", "y_coord"}},
	{internal.FieldLongitude, []string{"longitude", "lng", "lon", "Longitude", "x_coord"}},
	{internal.FieldTechnology, []string{"technology", "Technology", "tech", "plant_technology"}},
	{internal.FieldFuelType, []string{"fuel_type", "fuel", "Fuel", "primary_fuel"}},
	{internal.FieldAnnouncedYear, []string{"announced_year", "announced", "Announced Year"}},
	{internal.FieldConstructionStart, []string{"construction_start", "construction", "Construction Start"}},
	{internal.FieldOperatingYear, []string{"operating_year", "operating", "Operating Year"}},
	{internal.FieldMothballedYear, []string{"mothballed_year", "mothballed", "Mothballed Year"}},
	{internal.FieldCancelledYear, []string{"cancelled_year", "cancelled", "Cancelled Year"}},
	{internal.FieldWikiURL, []string{"wiki_url", "wiki", "wikipedia", "Wiki URL"}},
}

// Normalize maps one raw record onto the canonical schema. The won
// value is stringified and trimmed; a null or blank winner leaves the
// field missing but still ends the alias scan for that field.
func Normalize(raw internal.RawRecord) internal.Record {
	record := internal.Record{}
	for _, fa := range aliasTable {
		for _, alias := range fa.aliases {
			value, present := raw[alias]
			if !present {
				continue
			}
			if value != nil {
				record[fa.field] = internal.TextValue(stringify(value))
			}
			break
		}
	}
	return record
}

// NormalizeBatch normalizes each raw record independently and drops
// every result whose fields are all missing.
func NormalizeBatch(raws []internal.RawRecord) internal.Dataset {
	out := make(internal.Dataset, 0, len(raws))
	for _, raw := range raws {
		record := Normalize(raw)
		if record.Empty() {
			continue
		}
		out = append(out, record)
	}
	return out
}

// ExtractRecords unwraps a decoded JSON payload into raw records. A
// wrapper object is searched for the usual list-bearing keys; a bare
// object counts as a single record; non-map list items are skipped.
func ExtractRecords(payload any) []internal.RawRecord {
	switch v := payload.(type) {
	case []any:
		return rawSlice(v)
	case []map[string]any:
		out := make([]internal.RawRecord, 0, len(v))
		for _, m := range v {
			out = append(out, internal.RawRecord(m))
		}
		return out
	case map[string]any:
		for _, key := range []string{"data", "results", "items", "plants", "records"} {
			if inner, ok := v[key].([]any); ok {
				return rawSlice(inner)
			}
		}
		return []internal.RawRecord{internal.RawRecord(v)}
	default:
		return nil
	}
}

func rawSlice(items []any) []internal.RawRecord {
	out := make([]internal.RawRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, internal.RawRecord(m))
		}
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
