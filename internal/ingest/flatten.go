package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
)

var floorPattern = regexp.MustCompile(`^(\d+)`)

// Flatten converts one raw catalog record into its stored listing payload.
// Derived fields (ward, floor number, canonical features, semantic text) are
// computed here once so search never parses raw strings.
func Flatten(p *rawProperty) listing.Listing {
	l := listing.Listing{
		ID:               p.ID,
		Name:             p.Name,
		AddressFull:      p.Address.Full,
		Ward:             wardFromAddress(p.Address.Full),
		Latitude:         p.Address.Latitude,
		Longitude:        p.Address.Longitude,
		MonthlyTotal:     p.Price.MonthlyTotal,
		ManagementFee:    p.Price.ManagementFee,
		GuarantorService: p.InitialCost.GuarantorService,
		AreaM2:           p.Area.M2,
		PricePerM2:       p.Area.PricePerM2,
		YearBuilt:        p.YearBuilt,
		FloorNumber:      parseFloor(p.Floor),

		UnitFeatures:        listing.CanonicalFeatures(p.Features.Unit),
		BuildingFeatures:    listing.CanonicalFeatures(p.Features.Building),
		UnitFeaturesRaw:     p.Features.Unit,
		BuildingFeaturesRaw: p.Features.Building,

		JapaneseRequired: japaneseRequired(p.Requirements),
	}

	if p.InitialCost.FireInsurance != nil {
		l.FireInsurance = *p.InitialCost.FireInsurance
	}
	if p.Contract != nil {
		if p.Contract.Length != nil {
			l.ContractLength = *p.Contract.Length
		}
		if p.Contract.Type != nil {
			l.ContractType = *p.Contract.Type
		}
	}

	for _, s := range p.NearestStations {
		l.Stations = append(l.Stations, listing.Station{
			Name:        listing.NormalizeStation(s.StationName),
			WalkTimeMin: s.WalkTimeMin,
			Lines:       s.Lines,
		})
	}

	l.SemanticText = semanticText(p)
	return l
}

// semanticText composes the descriptive string the embedding is built from:
// name, address, type, area, price, age, features and stations.
func semanticText(p *rawProperty) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s, Type: %s, Area: %g m2, ", p.Name, p.Address.Full, p.Type, p.Area.M2)
	fmt.Fprintf(&b, "Price: ¥%d/month, Built: %d, ", p.Price.MonthlyTotal, p.YearBuilt)
	fmt.Fprintf(&b, "Features: %s, ", strings.Join(append(append([]string{}, p.Features.Unit...), p.Features.Building...), ", "))

	stations := make([]string, len(p.NearestStations))
	for i, s := range p.NearestStations {
		stations[i] = fmt.Sprintf("%s (%d min)", s.StationName, s.WalkTimeMin)
	}
	fmt.Fprintf(&b, "Stations: %s", strings.Join(stations, ", "))
	return b.String()
}

// wardFromAddress extracts the ward from a full address like
// "1-2-3 Azabu, Minato-ku, Tokyo" and normalizes it.
func wardFromAddress(full string) string {
	parts := strings.Split(full, ", ")
	if len(parts) < 2 {
		return ""
	}
	return listing.NormalizeWard(parts[1])
}

// parseFloor reads the leading digits of a floor label like "2F".
// Unparsable or missing labels map to 0.
func parseFloor(floor *string) int {
	if floor == nil {
		return 0
	}
	m := floorPattern.FindString(strings.TrimSpace(*floor))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func japaneseRequired(requirements map[string]any) bool {
	v, ok := requirements["japanese_required"].(bool)
	return ok && v
}
