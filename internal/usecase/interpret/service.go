// Package interpret resolves free-text queries into validated structured
// query elements using a language model extraction oracle.
package interpret

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
)

// Service is the query interpreter. Stateless between queries; the only side
// effect is the outbound model call.
type Service struct {
	extractor Extractor
	logger    *zap.Logger
}

// New creates a query interpreter.
func New(extractor Extractor, logger *zap.Logger) *Service {
	return &Service{extractor: extractor, logger: logger}
}

// Interpret extracts structured elements from rawQuery.
//
// Malformed model output is retried once with a corrective instruction. If
// extraction still fails, the interpreter degrades gracefully: it returns
// elements carrying only the raw query as semantic text, so the query
// executes as pure semantic search instead of failing outright.
//
// The local validation pass is deterministic and never retried against the
// model: conflicting constraints surface as a domain.ValidationError.
func (s *Service) Interpret(ctx context.Context, rawQuery string) (query.Elements, error) {
	elements, err := s.extractor.Extract(ctx, rawQuery, "")
	if errors.Is(err, domain.ErrMalformedExtraction) {
		s.logger.Debug("extraction output malformed, retrying with correction", zap.Error(err))
		elements, err = s.extractor.Extract(ctx, rawQuery, correctionFor(err))
	}
	if err != nil {
		s.logger.Warn("query extraction failed, degrading to pure semantic search",
			zap.String("query", rawQuery),
			zap.Error(fmt.Errorf("%w: %w", domain.ErrExtraction, err)),
		)
		return query.Elements{SemanticText: rawQuery, Degraded: true}, nil
	}

	elements.Normalize()
	if elements.SemanticText == "" {
		elements.SemanticText = rawQuery
	}

	if err := elements.Validate(); err != nil {
		return query.Elements{}, fmt.Errorf("validate query elements: %w", err)
	}
	return elements, nil
}

// correctionFor builds the corrective instruction appended on retry.
func correctionFor(parseErr error) string {
	return fmt.Sprintf(
		"Your previous reply could not be parsed (%v). "+
			"Reply with exactly one JSON object matching the schema, no prose, no code fences.",
		parseErr,
	)
}
