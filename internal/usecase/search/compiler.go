package search

import (
	"fmt"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/predicate"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
)

// Compile translates validated query elements into a store predicate.
// Returns nil when no structured constraint is present (pure semantic
// ranking). Pure function, no I/O; conditions are emitted in a fixed field
// order so that equal inputs compile to structurally equal predicates.
//
// Station constraints (name, max walk time, line) are compiled into a single
// existential condition over the nearest_stations array: every present
// sub-condition must hold on the same station entry. Compiling them as
// independent top-level leaves would incorrectly match a listing whose
// station A satisfies the walk time while an unrelated station B carries the
// requested line.
func Compile(e query.Elements) (*predicate.Expression, error) {
	if !e.HasConstraints() {
		return nil, nil
	}

	var must, mustNot []predicate.Condition

	add := func(c predicate.Condition, err error) error {
		if err != nil {
			return err
		}
		must = append(must, c)
		return nil
	}

	ceilings := []struct {
		key   string
		value *int
	}{
		{listing.FieldMonthlyTotal, e.MaxMonthlyPrice},
		{listing.FieldManagementFee, e.MaxManagementFee},
		{listing.FieldGuarantorService, e.MaxGuarantorService},
		{listing.FieldFireInsurance, e.MaxFireInsurance},
	}
	for _, c := range ceilings {
		if c.value == nil {
			continue
		}
		if err := add(lteCondition(c.key, float64(*c.value))); err != nil {
			return nil, err
		}
	}

	if e.MinAreaM2 != nil {
		if err := add(gteCondition(listing.FieldAreaM2, *e.MinAreaM2)); err != nil {
			return nil, err
		}
	}
	if e.MinYearBuilt != nil {
		if err := add(gteCondition(listing.FieldYearBuilt, float64(*e.MinYearBuilt))); err != nil {
			return nil, err
		}
	}

	if e.MinFloor != nil || e.MaxFloor != nil {
		var gte, lte *float64
		if e.MinFloor != nil {
			v := float64(*e.MinFloor)
			gte = &v
		}
		if e.MaxFloor != nil {
			v := float64(*e.MaxFloor)
			lte = &v
		}
		r, err := predicate.NewRangeBounds(nil, gte, nil, lte)
		if err != nil {
			return nil, fmt.Errorf("compile floor range: %w", err)
		}
		if err := add(predicate.NewRange(listing.FieldFloorNumber, r)); err != nil {
			return nil, err
		}
	}

	if e.ContractLength != nil {
		if err := add(predicate.NewMatch(listing.FieldContractLength, *e.ContractLength)); err != nil {
			return nil, err
		}
	}
	if e.Ward != nil {
		if err := add(predicate.NewMatch(listing.FieldWard, listing.NormalizeWard(*e.Ward))); err != nil {
			return nil, err
		}
	}
	if e.JapaneseRequired != nil {
		if err := add(predicate.NewMatchBool(listing.FieldJapaneseRequired, *e.JapaneseRequired)); err != nil {
			return nil, err
		}
	}

	for _, feature := range e.UnitFeatures {
		if err := add(containsFeature(listing.FieldUnitFeatures, feature)); err != nil {
			return nil, err
		}
	}
	for _, feature := range e.BuildingFeatures {
		if err := add(containsFeature(listing.FieldBuildingFeatures, feature)); err != nil {
			return nil, err
		}
	}

	// Pet-friendliness is sugar for containment of the fixed feature keyword.
	if e.PetFriendly != nil {
		c, err := predicate.NewContains(listing.FieldUnitFeatures, listing.PetFriendlyFeature)
		if err != nil {
			return nil, err
		}
		if *e.PetFriendly {
			must = append(must, c)
		} else {
			mustNot = append(mustNot, c)
		}
	}

	if station, err := compileStation(e); err != nil {
		return nil, err
	} else if station != nil {
		must = append(must, *station)
	}

	expr, err := predicate.NewExpression(must, mustNot)
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}
	if expr.IsEmpty() {
		return nil, nil
	}
	return &expr, nil
}

// compileStation builds the existential nearest_stations condition, or nil
// when no station constraint is present. Even a single sub-condition uses the
// nested form to keep compilation uniform.
func compileStation(e query.Elements) (*predicate.Condition, error) {
	var sub []predicate.Condition

	if e.StationName != nil {
		c, err := predicate.NewMatch(listing.StationFieldName, listing.NormalizeStation(*e.StationName))
		if err != nil {
			return nil, fmt.Errorf("compile station name: %w", err)
		}
		sub = append(sub, c)
	}
	if e.MaxWalkTime != nil {
		c, err := lteCondition(listing.StationFieldWalkTime, float64(*e.MaxWalkTime))
		if err != nil {
			return nil, fmt.Errorf("compile walk time: %w", err)
		}
		sub = append(sub, c)
	}
	if e.TrainLine != nil {
		c, err := predicate.NewContains(listing.StationFieldLines, *e.TrainLine)
		if err != nil {
			return nil, fmt.Errorf("compile train line: %w", err)
		}
		sub = append(sub, c)
	}

	if len(sub) == 0 {
		return nil, nil
	}
	nested, err := predicate.NewNested(listing.FieldStations, sub...)
	if err != nil {
		return nil, fmt.Errorf("compile station condition: %w", err)
	}
	return &nested, nil
}

func lteCondition(key string, bound float64) (predicate.Condition, error) {
	r, err := predicate.NewRangeBounds(nil, nil, nil, &bound)
	if err != nil {
		return predicate.Condition{}, fmt.Errorf("compile %s ceiling: %w", key, err)
	}
	return predicate.NewRange(key, r)
}

func gteCondition(key string, bound float64) (predicate.Condition, error) {
	r, err := predicate.NewRangeBounds(nil, &bound, nil, nil)
	if err != nil {
		return predicate.Condition{}, fmt.Errorf("compile %s floor: %w", key, err)
	}
	return predicate.NewRange(key, r)
}

func containsFeature(key, raw string) (predicate.Condition, error) {
	return predicate.NewContains(key, listing.CanonicalFeature(raw))
}
