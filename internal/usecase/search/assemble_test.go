package search

import (
	"reflect"
	"testing"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/result"
)

func TestAssemble(t *testing.T) {
	hits := []result.Hit{
		result.New("101", 0.93, listing.Listing{
			ID:              "101",
			Name:            "Ebisu Heights 301",
			Ward:            "Shibuya-ku",
			AddressFull:     "1-2-3 Ebisu, Shibuya-ku, Tokyo",
			MonthlyTotal:    210000,
			AreaM2:          42.5,
			FloorNumber:     3,
			YearBuilt:       2019,
			UnitFeatures:    []string{"Pet Friendly"},
			UnitFeaturesRaw: []string{"Pet Friendly(+1 mo deposit)"},
			Stations: []listing.Station{
				{Name: "Ebisu", WalkTimeMin: 7, Lines: []string{"Yamanote"}},
			},
		}),
	}

	results := Assemble(hits)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.ID != "101" || r.Score != 0.93 {
		t.Errorf("identity not carried over: %+v", r)
	}
	if r.Ward != "Shibuya-ku" || r.MonthlyTotal != 210000 {
		t.Errorf("payload not carried over: %+v", r)
	}
	if !reflect.DeepEqual(r.UnitFeatures, []string{"Pet Friendly(+1 mo deposit)"}) {
		t.Errorf("display should prefer raw feature strings, got %v", r.UnitFeatures)
	}
	if len(r.Stations) != 1 || r.Stations[0].Name != "Ebisu" {
		t.Errorf("stations not carried over: %+v", r.Stations)
	}
}

func TestAssemble_Empty(t *testing.T) {
	results := Assemble(nil)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", results)
	}
}

func TestAssemble_FallsBackToCanonicalFeatures(t *testing.T) {
	hits := []result.Hit{
		result.New("7", 0.5, listing.Listing{
			ID:           "7",
			UnitFeatures: []string{"Balcony"},
		}),
	}
	results := Assemble(hits)
	if !reflect.DeepEqual(results[0].UnitFeatures, []string{"Balcony"}) {
		t.Errorf("expected canonical fallback, got %v", results[0].UnitFeatures)
	}
}
