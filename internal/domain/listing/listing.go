// Package listing defines the catalog record payload shared by ingestion,
// the filter compiler, and the store adapter.
package listing

import "strings"

// Payload field names as stored in the vector store.
// The compiler and the store adapter must agree on these.
const (
	FieldID                  = "id"
	FieldName                = "name"
	FieldAddressFull         = "address_full"
	FieldWard                = "ward"
	FieldLatitude            = "latitude"
	FieldLongitude           = "longitude"
	FieldMonthlyTotal        = "monthly_total"
	FieldManagementFee       = "management_fee"
	FieldGuarantorService    = "guarantor_service"
	FieldFireInsurance       = "fire_insurance"
	FieldAreaM2              = "area_m2"
	FieldPricePerM2          = "price_per_m2"
	FieldYearBuilt           = "year_built"
	FieldFloorNumber         = "floor_number"
	FieldContractLength      = "contract_length"
	FieldContractType        = "contract_type"
	FieldUnitFeatures        = "unit_features"
	FieldBuildingFeatures    = "building_features"
	FieldUnitFeaturesRaw     = "unit_features_raw"
	FieldBuildingFeaturesRaw = "building_features_raw"
	FieldJapaneseRequired    = "japanese_required"
	FieldSemanticText        = "semantic_text"
	FieldStations            = "nearest_stations"

	// Sub-fields of one nearest_stations entry.
	StationFieldName     = "name"
	StationFieldWalkTime = "walk_time_min"
	StationFieldLines    = "lines"
)

// PetFriendlyFeature is the canonical unit feature keyword that marks a
// pet-friendly listing. A pet-friendliness constraint compiles to a
// containment check against this keyword, not a distinct stored field.
const PetFriendlyFeature = "Pet Friendly"

// Station is one nearest-station entry on a listing.
type Station struct {
	Name        string
	WalkTimeMin int
	Lines       []string
}

// Listing is the flattened, filterable payload of one catalog record.
// It is produced once by ingestion and read-only during search.
type Listing struct {
	ID               string
	Name             string
	AddressFull      string
	Ward             string
	Latitude         float64
	Longitude        float64
	MonthlyTotal     int
	ManagementFee    int
	GuarantorService int
	FireInsurance    int
	AreaM2           float64
	PricePerM2       float64
	YearBuilt        int
	FloorNumber      int
	ContractLength   string
	ContractType     string

	// Canonical feature keywords, used for filtering.
	UnitFeatures     []string
	BuildingFeatures []string
	// Raw feature strings with qualifiers kept, used for display.
	UnitFeaturesRaw     []string
	BuildingFeaturesRaw []string

	JapaneseRequired bool
	Stations         []Station

	// SemanticText is the pre-composed descriptive string the stored
	// embedding was built from.
	SemanticText string
}

// CanonicalFeature reduces a raw feature string to its filterable keyword:
// the text before the first parenthetical qualifier, trimmed.
// "Pet Friendly(+1 mo deposit)" -> "Pet Friendly".
func CanonicalFeature(raw string) string {
	keyword, _, _ := strings.Cut(raw, "(")
	return strings.TrimSpace(keyword)
}

// CanonicalFeatures maps CanonicalFeature over raw, dropping empties.
func CanonicalFeatures(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if kw := CanonicalFeature(r); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// NormalizeStation converts a station name to its canonical form: trimmed,
// with any trailing "Station" word removed. Catalog exports usually carry the
// suffix while queries often omit it; ingestion and the filter compiler both
// store and match the canonical form.
// "Omotesando Station" -> "Omotesando", "Ebisu" -> "Ebisu".
func NormalizeStation(name string) string {
	n := strings.TrimSpace(name)
	stem := strings.TrimSuffix(strings.TrimSuffix(n, "Station"), "station")
	stem = strings.TrimSpace(stem)
	if stem == "" {
		return n
	}
	return stem
}

// NormalizeWard converts a ward name to its canonical "<Stem>-ku" form:
// the stem is capitalized and the "-ku" suffix appended when missing.
// "minato" -> "Minato-ku", "Minato-ku" -> "Minato-ku".
func NormalizeWard(ward string) string {
	w := strings.TrimSpace(ward)
	if w == "" {
		return ""
	}
	stem := strings.TrimSuffix(strings.TrimSuffix(w, "-ku"), "-Ku")
	if stem == "" {
		return ""
	}
	stem = strings.ToUpper(stem[:1]) + strings.ToLower(stem[1:])
	return stem + "-ku"
}
