// Package result defines the per-query search hit.
package result

import "github.com/ppetroskevicius/fastctl-search/internal/domain/listing"

// Hit is a single search hit: listing id, similarity score (higher is
// better), and the display payload. Constructed once per query and discarded
// after the caller consumes it.
type Hit struct {
	id      string
	score   float64
	listing listing.Listing
}

// New creates a search hit.
func New(id string, score float64, l listing.Listing) Hit {
	return Hit{id: id, score: score, listing: l}
}

// ID returns the listing identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the similarity score.
func (h *Hit) Score() float64 { return h.score }

// Listing returns the display payload.
func (h *Hit) Listing() listing.Listing { return h.listing }
