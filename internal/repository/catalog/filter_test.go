package catalog

import (
	"testing"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/predicate"
)

func f64(v float64) *float64 { return &v }

func mustMatch(t *testing.T, key, value string) predicate.Condition {
	t.Helper()
	c, err := predicate.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}

func mustRange(t *testing.T, key string, gte, lte *float64) predicate.Condition {
	t.Helper()
	r, err := predicate.NewRangeBounds(nil, gte, nil, lte)
	if err != nil {
		t.Fatalf("NewRangeBounds: %v", err)
	}
	c, err := predicate.NewRange(key, r)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	return c
}

func TestToFilter_Nil(t *testing.T) {
	if toFilter(nil) != nil {
		t.Error("nil predicate must map to no filter")
	}

	empty, err := predicate.NewExpression(nil, nil)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if toFilter(&empty) != nil {
		t.Error("empty predicate must map to no filter")
	}
}

func TestToFilter_MustAndMustNot(t *testing.T) {
	notPet, err := predicate.NewContains("unit_features", "Pet Friendly")
	if err != nil {
		t.Fatalf("NewContains: %v", err)
	}
	expr, err := predicate.NewExpression(
		[]predicate.Condition{mustMatch(t, "ward", "Minato-ku")},
		[]predicate.Condition{notPet},
	)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}

	f := toFilter(&expr)
	if f == nil {
		t.Fatal("expected a filter")
	}
	if len(f.GetMust()) != 1 || len(f.GetMustNot()) != 1 {
		t.Fatalf("unexpected filter shape: %+v", f)
	}

	m := f.GetMust()[0].GetField()
	if m.GetKey() != "ward" || m.GetMatch().GetKeyword() != "Minato-ku" {
		t.Errorf("unexpected must condition: %+v", m)
	}
	n := f.GetMustNot()[0].GetField()
	if n.GetKey() != "unit_features" || n.GetMatch().GetKeyword() != "Pet Friendly" {
		t.Errorf("unexpected must_not condition: %+v", n)
	}
}

func TestToCondition_Range(t *testing.T) {
	cond := toCondition(mustRange(t, "monthly_total", nil, f64(200000)))
	field := cond.GetField()
	if field.GetKey() != "monthly_total" {
		t.Fatalf("unexpected key: %s", field.GetKey())
	}
	r := field.GetRange()
	if r.GetLte() != 200000 {
		t.Errorf("lte = %v, want 200000", r.GetLte())
	}
	if r.Gt != nil || r.Gte != nil || r.Lt != nil {
		t.Errorf("unexpected extra bounds: %+v", r)
	}
}

func TestToCondition_MatchBool(t *testing.T) {
	c, err := predicate.NewMatchBool("japanese_required", false)
	if err != nil {
		t.Fatalf("NewMatchBool: %v", err)
	}
	cond := toCondition(c)
	if cond.GetField().GetMatch().GetBoolean() != false {
		t.Errorf("unexpected bool match: %+v", cond)
	}
}

func TestToCondition_NestedScope(t *testing.T) {
	name := mustMatch(t, "name", "Ebisu")
	walk := mustRange(t, "walk_time_min", nil, f64(10))
	nested, err := predicate.NewNested("nearest_stations", name, walk)
	if err != nil {
		t.Fatalf("NewNested: %v", err)
	}

	cond := toCondition(nested)
	nf := cond.GetNested()
	if nf == nil {
		t.Fatal("expected a nested filter condition")
	}
	if nf.GetKey() != "nearest_stations" {
		t.Errorf("nested key = %s", nf.GetKey())
	}

	must := nf.GetFilter().GetMust()
	if len(must) != 2 {
		t.Fatalf("expected 2 sub-conditions, got %d", len(must))
	}
	if must[0].GetField().GetKey() != "name" {
		t.Errorf("sub-condition keys must stay relative to the entry: %+v", must[0])
	}
}
