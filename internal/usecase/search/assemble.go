package search

import (
	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/result"
)

// Result is a caller-facing display record.
type Result struct {
	ID               string
	Score            float64
	Name             string
	Ward             string
	AddressFull      string
	MonthlyTotal     int
	AreaM2           float64
	FloorNumber      int
	YearBuilt        int
	ContractLength   string
	UnitFeatures     []string
	BuildingFeatures []string
	Stations         []listing.Station
}

// Assemble maps store hits to display records in order. Pure and total; no
// filtering or ranking happens here.
func Assemble(hits []result.Hit) []Result {
	out := make([]Result, len(hits))
	for i := range hits {
		h := &hits[i]
		l := h.Listing()
		out[i] = Result{
			ID:               h.ID(),
			Score:            h.Score(),
			Name:             l.Name,
			Ward:             l.Ward,
			AddressFull:      l.AddressFull,
			MonthlyTotal:     l.MonthlyTotal,
			AreaM2:           l.AreaM2,
			FloorNumber:      l.FloorNumber,
			YearBuilt:        l.YearBuilt,
			ContractLength:   l.ContractLength,
			UnitFeatures:     displayFeatures(l.UnitFeaturesRaw, l.UnitFeatures),
			BuildingFeatures: displayFeatures(l.BuildingFeaturesRaw, l.BuildingFeatures),
			Stations:         l.Stations,
		}
	}
	return out
}

// displayFeatures prefers the raw strings with qualifiers kept.
func displayFeatures(raw, canonical []string) []string {
	if len(raw) > 0 {
		return raw
	}
	return canonical
}
