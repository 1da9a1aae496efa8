package catalog

import (
	"github.com/qdrant/go-client/qdrant"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/predicate"
)

// toFilter translates a compiled predicate into the store's filter language.
// A nil predicate means pure semantic ranking, no filter.
func toFilter(pred *predicate.Expression) *qdrant.Filter {
	if pred == nil || pred.IsEmpty() {
		return nil
	}
	return &qdrant.Filter{
		Must:    toConditions(pred.Must()),
		MustNot: toConditions(pred.MustNot()),
	}
}

func toConditions(conds []predicate.Condition) []*qdrant.Condition {
	if len(conds) == 0 {
		return nil
	}
	out := make([]*qdrant.Condition, len(conds))
	for i := range conds {
		out[i] = toCondition(conds[i])
	}
	return out
}

func toCondition(c predicate.Condition) *qdrant.Condition {
	switch {
	case c.IsNested():
		// Existential scope: every sub-condition must hold on the same array
		// entry. Keys inside the nested filter are relative to the entry.
		return qdrant.NewNestedFilter(c.Key(), &qdrant.Filter{
			Must: toConditions(c.Nested()),
		})
	case c.IsRange():
		r := c.Range()
		return qdrant.NewRange(c.Key(), &qdrant.Range{
			Gt:  r.GT(),
			Gte: r.GTE(),
			Lt:  r.LT(),
			Lte: r.LTE(),
		})
	case c.IsMatchBool():
		return qdrant.NewMatchBool(c.Key(), *c.MatchBool())
	case c.IsContains():
		// A keyword match against an array payload field is containment.
		return qdrant.NewMatchKeyword(c.Key(), c.Contains())
	default:
		return qdrant.NewMatchKeyword(c.Key(), c.Match())
	}
}
