package search

import (
	"context"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/predicate"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/result"
)

// Interpreter resolves free text into validated query elements.
type Interpreter interface {
	Interpret(ctx context.Context, rawQuery string) (query.Elements, error)
}

// Catalog executes one combined vector similarity + structural filter query
// against the listing store. The store applies pred as a hard gate over the
// candidate space, so topK means "best topK among records satisfying every
// constraint". A nil pred means pure semantic ranking.
type Catalog interface {
	Query(
		ctx context.Context, vector []float32,
		pred *predicate.Expression, topK int,
	) ([]result.Hit, error)
}
