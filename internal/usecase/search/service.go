// Package search runs the hybrid query pipeline: interpret, compile,
// retrieve, assemble.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/result"
	"github.com/ppetroskevicius/fastctl-search/internal/metrics"
)

// Service executes free-text listing searches. Request-scoped and stateless
// between queries: concurrent calls need no coordination.
type Service struct {
	interp  Interpreter
	catalog Catalog
	embed   domain.Embedder
	logger  *zap.Logger
}

// New creates a search service.
func New(interp Interpreter, catalog Catalog, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{interp: interp, catalog: catalog, embed: embed, logger: logger}
}

// Search runs the full pipeline for one raw query and returns ranked display
// records. topK bounds the result set and is required. Zero matches is an
// empty list, not an error.
func (s *Service) Search(ctx context.Context, rawQuery string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}

	elements, err := s.interp.Interpret(ctx, rawQuery)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.SearchesTotal.WithLabelValues("validation_error").Inc()
		}
		return nil, err
	}

	hits, err := s.Retrieve(ctx, elements, topK)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("retrieval_error").Inc()
		return nil, err
	}

	outcome := "ok"
	if elements.Degraded {
		outcome = "degraded"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	return Assemble(hits), nil
}

// Retrieve compiles the structured filter, embeds the semantic fragment, and
// issues one combined query to the store. Results are ordered by descending
// score; equal scores are broken by ascending listing id so repeated runs
// produce identical output.
func (s *Service) Retrieve(ctx context.Context, elements query.Elements, topK int) ([]result.Hit, error) {
	pred, err := Compile(elements)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}

	emb, err := s.embed.Embed(ctx, elements.SemanticText)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}

	hits, err := s.catalog.Query(ctx, emb.Embedding, pred, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query catalog: %w", domain.ErrRetrieval, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score() != hits[j].Score() {
			return hits[i].Score() > hits[j].Score()
		}
		return hits[i].ID() < hits[j].ID()
	})

	s.logger.Debug("retrieved listings",
		zap.Int("hits", len(hits)),
		zap.Int("top_k", topK),
		zap.Bool("filtered", pred != nil),
	)
	return hits, nil
}
