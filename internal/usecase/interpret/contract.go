package interpret

import (
	"context"

	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
)

// Extractor turns free text into structured query elements via the language
// model. correction, when non-empty, is appended to the prompt to fix a prior
// malformed reply; implementations return domain.ErrMalformedExtraction when
// the model output cannot be parsed.
type Extractor interface {
	Extract(ctx context.Context, rawQuery, correction string) (query.Elements, error)
}
