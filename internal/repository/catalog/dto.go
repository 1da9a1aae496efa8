package catalog

import (
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
)

// pointNamespace derives stable point UUIDs from catalog listing ids, so
// re-ingesting the same catalog overwrites instead of duplicating.
var pointNamespace = uuid.MustParse("9f2f3a60-1c6f-4c35-8a8e-f60d2c8e9a11")

func pointID(listingID string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(pointNamespace, []byte(listingID)).String())
}

// toPayload flattens a listing into the stored payload. Station entries are
// kept as a list of objects so existential filters can scope over them.
func toPayload(l *listing.Listing) map[string]*qdrant.Value {
	stations := make([]any, len(l.Stations))
	for i, s := range l.Stations {
		stations[i] = map[string]any{
			listing.StationFieldName:     s.Name,
			listing.StationFieldWalkTime: s.WalkTimeMin,
			listing.StationFieldLines:    toAnySlice(s.Lines),
		}
	}

	return qdrant.NewValueMap(map[string]any{
		listing.FieldID:                  l.ID,
		listing.FieldName:                l.Name,
		listing.FieldAddressFull:         l.AddressFull,
		listing.FieldWard:                l.Ward,
		listing.FieldLatitude:            l.Latitude,
		listing.FieldLongitude:           l.Longitude,
		listing.FieldMonthlyTotal:        l.MonthlyTotal,
		listing.FieldManagementFee:       l.ManagementFee,
		listing.FieldGuarantorService:    l.GuarantorService,
		listing.FieldFireInsurance:       l.FireInsurance,
		listing.FieldAreaM2:              l.AreaM2,
		listing.FieldPricePerM2:          l.PricePerM2,
		listing.FieldYearBuilt:           l.YearBuilt,
		listing.FieldFloorNumber:         l.FloorNumber,
		listing.FieldContractLength:      l.ContractLength,
		listing.FieldContractType:        l.ContractType,
		listing.FieldUnitFeatures:        toAnySlice(l.UnitFeatures),
		listing.FieldBuildingFeatures:    toAnySlice(l.BuildingFeatures),
		listing.FieldUnitFeaturesRaw:     toAnySlice(l.UnitFeaturesRaw),
		listing.FieldBuildingFeaturesRaw: toAnySlice(l.BuildingFeaturesRaw),
		listing.FieldJapaneseRequired:    l.JapaneseRequired,
		listing.FieldSemanticText:        l.SemanticText,
		listing.FieldStations:            stations,
	})
}

// fromPayload rebuilds the listing from a stored payload. Lenient on missing
// fields: zero values stand in for anything the payload lacks.
func fromPayload(payload map[string]*qdrant.Value) listing.Listing {
	l := listing.Listing{
		ID:                  payloadString(payload, listing.FieldID),
		Name:                payloadString(payload, listing.FieldName),
		AddressFull:         payloadString(payload, listing.FieldAddressFull),
		Ward:                payloadString(payload, listing.FieldWard),
		Latitude:            payloadFloat(payload, listing.FieldLatitude),
		Longitude:           payloadFloat(payload, listing.FieldLongitude),
		MonthlyTotal:        payloadInt(payload, listing.FieldMonthlyTotal),
		ManagementFee:       payloadInt(payload, listing.FieldManagementFee),
		GuarantorService:    payloadInt(payload, listing.FieldGuarantorService),
		FireInsurance:       payloadInt(payload, listing.FieldFireInsurance),
		AreaM2:              payloadFloat(payload, listing.FieldAreaM2),
		PricePerM2:          payloadFloat(payload, listing.FieldPricePerM2),
		YearBuilt:           payloadInt(payload, listing.FieldYearBuilt),
		FloorNumber:         payloadInt(payload, listing.FieldFloorNumber),
		ContractLength:      payloadString(payload, listing.FieldContractLength),
		ContractType:        payloadString(payload, listing.FieldContractType),
		UnitFeatures:        payloadStrings(payload, listing.FieldUnitFeatures),
		BuildingFeatures:    payloadStrings(payload, listing.FieldBuildingFeatures),
		UnitFeaturesRaw:     payloadStrings(payload, listing.FieldUnitFeaturesRaw),
		BuildingFeaturesRaw: payloadStrings(payload, listing.FieldBuildingFeaturesRaw),
		JapaneseRequired:    payloadBool(payload, listing.FieldJapaneseRequired),
		SemanticText:        payloadString(payload, listing.FieldSemanticText),
	}

	if v, ok := payload[listing.FieldStations]; ok {
		for _, entry := range v.GetListValue().GetValues() {
			fields := entry.GetStructValue().GetFields()
			if fields == nil {
				continue
			}
			l.Stations = append(l.Stations, listing.Station{
				Name:        payloadString(fields, listing.StationFieldName),
				WalkTimeMin: payloadInt(fields, listing.StationFieldWalkTime),
				Lines:       payloadStrings(fields, listing.StationFieldLines),
			})
		}
	}
	return l
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func payloadString(m map[string]*qdrant.Value, key string) string {
	if v, ok := m[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadBool(m map[string]*qdrant.Value, key string) bool {
	if v, ok := m[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

// payloadInt tolerates integers stored as doubles.
func payloadInt(m map[string]*qdrant.Value, key string) int {
	return int(payloadFloat(m, key))
}

func payloadFloat(m map[string]*qdrant.Value, key string) float64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_IntegerValue:
		return float64(kind.IntegerValue)
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	default:
		return 0
	}
}

func payloadStrings(m map[string]*qdrant.Value, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	values := v.GetListValue().GetValues()
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, item := range values {
		if s := item.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
