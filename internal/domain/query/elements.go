// Package query defines the structured interpretation of one free-text query.
package query

import (
	"strings"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
)

// Elements is the validated output of the query interpreter.
//
// Every structured constraint is optional: a nil pointer means "no opinion"
// and never "zero". A present zero is a real constraint (a price ceiling of 0
// excludes every listing priced above 0).
type Elements struct {
	// SemanticText carries the search intent for embedding. Always set;
	// falls back to the raw query when extraction degrades.
	SemanticText string

	// Degraded reports that extraction failed and only the raw query is
	// carried. Not a constraint; a constraint-free query is not degraded.
	Degraded bool

	MaxMonthlyPrice     *int
	MaxManagementFee    *int
	MaxGuarantorService *int
	MaxFireInsurance    *int
	MinAreaM2           *float64
	MinYearBuilt        *int
	MinFloor            *int
	MaxFloor            *int
	ContractLength      *string
	Ward                *string
	UnitFeatures        []string
	BuildingFeatures    []string
	PetFriendly         *bool
	JapaneseRequired    *bool
	StationName         *string
	MaxWalkTime         *int
	TrainLine           *string
}

// HasConstraints reports whether any structured constraint is present.
func (e *Elements) HasConstraints() bool {
	return e.MaxMonthlyPrice != nil ||
		e.MaxManagementFee != nil ||
		e.MaxGuarantorService != nil ||
		e.MaxFireInsurance != nil ||
		e.MinAreaM2 != nil ||
		e.MinYearBuilt != nil ||
		e.MinFloor != nil ||
		e.MaxFloor != nil ||
		e.ContractLength != nil ||
		e.Ward != nil ||
		len(e.UnitFeatures) > 0 ||
		len(e.BuildingFeatures) > 0 ||
		e.PetFriendly != nil ||
		e.JapaneseRequired != nil ||
		e.StationName != nil ||
		e.MaxWalkTime != nil ||
		e.TrainLine != nil
}

// Normalize drops constraints the model emitted as empty or blank strings,
// trims the rest, and removes empty feature entries. Empty means absent,
// not "equals empty string".
func (e *Elements) Normalize() {
	e.SemanticText = strings.TrimSpace(e.SemanticText)
	e.ContractLength = trimmed(e.ContractLength)
	e.Ward = trimmed(e.Ward)
	e.StationName = trimmed(e.StationName)
	e.TrainLine = trimmed(e.TrainLine)
	e.UnitFeatures = nonBlank(e.UnitFeatures)
	e.BuildingFeatures = nonBlank(e.BuildingFeatures)
}

// Validate checks range sanity on present constraints. It rejects instead of
// clamping and names the offending field (or field pair). No model call.
func (e *Elements) Validate() error {
	nonNegative := []struct {
		field string
		value *int
	}{
		{"max_monthly_price", e.MaxMonthlyPrice},
		{"max_management_fee", e.MaxManagementFee},
		{"max_guarantor_service", e.MaxGuarantorService},
		{"max_fire_insurance", e.MaxFireInsurance},
		{"min_year_built", e.MinYearBuilt},
		{"min_floor", e.MinFloor},
		{"max_floor", e.MaxFloor},
		{"max_walk_time", e.MaxWalkTime},
	}
	for _, c := range nonNegative {
		if c.value != nil && *c.value < 0 {
			return domain.NewValidationError(c.field, "must be non-negative")
		}
	}
	if e.MinAreaM2 != nil && *e.MinAreaM2 < 0 {
		return domain.NewValidationError("min_area_m2", "must be non-negative")
	}
	if e.MinFloor != nil && e.MaxFloor != nil && *e.MinFloor > *e.MaxFloor {
		return domain.NewValidationError("min_floor/max_floor", "min exceeds max")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func nonBlank(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
