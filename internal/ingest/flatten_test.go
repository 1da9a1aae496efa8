package ingest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
)

func strRef(v string) *string { return &v }
func intRef(v int) *int       { return &v }

func sampleRaw() rawProperty {
	return rawProperty{
		ID:   "4521",
		Name: "Park Axis Meguro 502",
		Type: "Rent",
		Address: rawAddress{
			Full:      "2-4-6 Shimomeguro, Meguro-ku, Tokyo",
			Latitude:  35.633,
			Longitude: 139.715,
		},
		Area:      rawArea{M2: 38.4, PricePerM2: 6197.9},
		Floor:     strRef("5F"),
		YearBuilt: 2016,
		Price:     rawPrice{MonthlyTotal: 238000, ManagementFee: 12000},
		InitialCost: rawInitialCost{
			GuarantorService: 11900,
			FireInsurance:    intRef(20000),
		},
		Contract: &rawContract{Length: strRef("2 years"), Type: strRef("Standard")},
		Features: rawFeatures{
			Unit:     []string{"Pet Friendly(+1 mo deposit)", "Autolock"},
			Building: []string{"Elevator"},
		},
		Requirements: map[string]any{"japanese_required": true},
		NearestStations: []rawStation{
			{StationName: "Meguro", WalkTimeMin: 9, Lines: []string{"Yamanote"}},
		},
	}
}

func TestFlatten(t *testing.T) {
	raw := sampleRaw()
	l := Flatten(&raw)

	if l.ID != "4521" || l.Name != "Park Axis Meguro 502" {
		t.Errorf("identity not carried over: %+v", l)
	}
	if l.Ward != "Meguro-ku" {
		t.Errorf("ward = %q, want Meguro-ku", l.Ward)
	}
	if l.FloorNumber != 5 {
		t.Errorf("floor = %d, want 5", l.FloorNumber)
	}
	if l.FireInsurance != 20000 || l.GuarantorService != 11900 {
		t.Errorf("fees not carried over: %+v", l)
	}
	if l.ContractLength != "2 years" {
		t.Errorf("contract length = %q", l.ContractLength)
	}
	if !l.JapaneseRequired {
		t.Error("japanese_required not picked up from requirements")
	}

	if !reflect.DeepEqual(l.UnitFeatures, []string{"Pet Friendly", "Autolock"}) {
		t.Errorf("canonical features = %v", l.UnitFeatures)
	}
	if !reflect.DeepEqual(l.UnitFeaturesRaw, []string{"Pet Friendly(+1 mo deposit)", "Autolock"}) {
		t.Errorf("raw features = %v", l.UnitFeaturesRaw)
	}

	if len(l.Stations) != 1 || l.Stations[0].Name != "Meguro" || l.Stations[0].WalkTimeMin != 9 {
		t.Errorf("stations = %+v", l.Stations)
	}
}

func TestFlatten_StationNameCanonicalized(t *testing.T) {
	raw := sampleRaw()
	raw.NearestStations = []rawStation{
		{StationName: "Omotesando Station", WalkTimeMin: 9, Lines: []string{"Ginza"}},
	}
	l := Flatten(&raw)

	if len(l.Stations) != 1 || l.Stations[0].Name != "Omotesando" {
		t.Errorf("stored station name must drop the suffix, got %+v", l.Stations)
	}
	if l.Stations[0].Name != listing.NormalizeStation("Omotesando Station") {
		t.Error("stored name must agree with the query-side canonical form")
	}
}

func TestFlatten_SemanticText(t *testing.T) {
	raw := sampleRaw()
	l := Flatten(&raw)

	for _, fragment := range []string{
		"Park Axis Meguro 502",
		"Meguro-ku, Tokyo",
		"Area: 38.4 m2",
		"¥238000/month",
		"Built: 2016",
		"Pet Friendly(+1 mo deposit)",
		"Elevator",
		"Meguro (9 min)",
	} {
		if !strings.Contains(l.SemanticText, fragment) {
			t.Errorf("semantic text missing %q: %s", fragment, l.SemanticText)
		}
	}
}

func TestFlatten_MissingOptionalFields(t *testing.T) {
	raw := rawProperty{
		ID:      "1",
		Address: rawAddress{Full: "short address"},
	}
	l := Flatten(&raw)

	if l.Ward != "" {
		t.Errorf("unsplittable address should yield empty ward, got %q", l.Ward)
	}
	if l.FloorNumber != 0 || l.FireInsurance != 0 || l.ContractLength != "" {
		t.Errorf("missing optionals should be zero: %+v", l)
	}
	if l.JapaneseRequired {
		t.Error("absent requirements must not imply japanese_required")
	}
}

func TestParseFloor(t *testing.T) {
	tests := []struct {
		in   *string
		want int
	}{
		{nil, 0},
		{strRef("2F"), 2},
		{strRef(" 10F "), 10},
		{strRef("B1"), 0},
		{strRef(""), 0},
	}
	for _, tt := range tests {
		if got := parseFloor(tt.in); got != tt.want {
			label := "<nil>"
			if tt.in != nil {
				label = *tt.in
			}
			t.Errorf("parseFloor(%q) = %d, want %d", label, got, tt.want)
		}
	}
}
