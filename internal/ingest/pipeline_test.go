package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/listing"
)

// --- Mocks ---

type mockPipelineStore struct {
	mu         sync.Mutex
	ensured    bool
	dimensions int
	upserted   []listing.Listing
	upsertErr  error
}

func (m *mockPipelineStore) EnsureCollection(_ context.Context, dimensions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured = true
	m.dimensions = dimensions
	return nil
}

func (m *mockPipelineStore) UpsertBatch(_ context.Context, listings []listing.Listing, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if len(listings) != len(vectors) {
		return errors.New("length mismatch")
	}
	m.upserted = append(m.upserted, listings...)
	return nil
}

type flakyEmbedder struct {
	mu     sync.Mutex
	failOn map[string]bool
	calls  int
}

func (f *flakyEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for fragment := range f.failOn {
		if fragment != "" && strings.Contains(text, fragment) {
			return domain.EmbeddingResult{}, domain.ErrEmbeddingProvider
		}
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 2, 3}}, nil
}

func makeRecords(names ...string) []rawProperty {
	records := make([]rawProperty, len(names))
	for i, name := range names {
		records[i] = rawProperty{
			ID:      name,
			Name:    name,
			Address: rawAddress{Full: "1-1-1 Somewhere, Minato-ku, Tokyo"},
		}
	}
	return records
}

// --- Tests ---

func TestPipeline_Run(t *testing.T) {
	store := &mockPipelineStore{}
	pipeline, err := NewPipeline(&PipelineConfig{
		Store:      store,
		Embedder:   &flakyEmbedder{},
		Workers:    3,
		BatchSize:  2,
		Dimensions: 1536,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer pipeline.Release()

	stats, err := pipeline.Run(context.Background(), makeRecords("a", "b", "c", "d", "e"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Indexed != 5 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want 5 indexed", stats)
	}
	if !store.ensured || store.dimensions != 1536 {
		t.Error("collection must be ensured with the configured dimensions")
	}
	if len(store.upserted) != 5 {
		t.Errorf("upserted %d listings, want 5", len(store.upserted))
	}
}

func TestPipeline_EmbedFailureSkipsListingOnly(t *testing.T) {
	store := &mockPipelineStore{}
	pipeline, err := NewPipeline(&PipelineConfig{
		Store:     store,
		Embedder:  &flakyEmbedder{failOn: map[string]bool{"bad": true}},
		Workers:   1,
		BatchSize: 3,
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer pipeline.Release()

	stats, err := pipeline.Run(context.Background(), makeRecords("good-1", "bad-1", "good-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Indexed != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 2 indexed 1 failed", stats)
	}
	if len(store.upserted) != 2 {
		t.Errorf("upserted %d listings, want 2", len(store.upserted))
	}
}

func TestPipeline_UpsertFailureCountsBatch(t *testing.T) {
	store := &mockPipelineStore{upsertErr: domain.ErrStoreUnavailable}
	pipeline, err := NewPipeline(&PipelineConfig{
		Store:     store,
		Embedder:  &flakyEmbedder{},
		Workers:   1,
		BatchSize: 10,
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	defer pipeline.Release()

	stats, err := pipeline.Run(context.Background(), makeRecords("a", "b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Indexed != 0 || stats.Failed != 2 {
		t.Errorf("stats = %+v, want 2 failed", stats)
	}
}
