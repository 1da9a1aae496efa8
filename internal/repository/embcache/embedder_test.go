package embcache

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
)

// --- Mocks ---

type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

type mockInner struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockInner) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// --- Tests ---

func TestCachedEmbedder_MissThenHit(t *testing.T) {
	store := newMockStore()
	inner := &mockInner{result: domain.EmbeddingResult{
		Embedding:   []float32{0.25, -1.5, 3},
		TotalTokens: 12,
	}}
	c := New(inner, store, "text-embedding-3-small", nil, zap.NewNop())

	first, err := c.Embed(context.Background(), "pet friendly in Meguro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", inner.calls)
	}
	if first.TotalTokens != 12 {
		t.Error("miss must report real token usage")
	}

	second, err := c.Embed(context.Background(), "pet friendly in Meguro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Error("hit must not call the provider")
	}
	if !reflect.DeepEqual(second.Embedding, first.Embedding) {
		t.Errorf("cached vector differs: %v vs %v", second.Embedding, first.Embedding)
	}
	if second.TotalTokens != 0 {
		t.Error("hit consumes no tokens")
	}
}

func TestCachedEmbedder_KeyIncludesModel(t *testing.T) {
	store := newMockStore()
	inner := &mockInner{result: domain.EmbeddingResult{Embedding: []float32{1}}}

	a := New(inner, store, "model-a", nil, zap.NewNop())
	b := New(inner, store, "model-b", nil, zap.NewNop())

	if _, err := a.Embed(context.Background(), "same text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.Embed(context.Background(), "same text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("different models must not share cache entries, got %d calls", inner.calls)
	}
}

func TestCachedEmbedder_StoreFailureFallsThrough(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	inner := &mockInner{result: domain.EmbeddingResult{Embedding: []float32{2}}}
	c := New(inner, store, "m", nil, zap.NewNop())

	result, err := c.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatalf("cache failures must not fail the embed: %v", err)
	}
	if inner.calls != 1 {
		t.Error("provider should be called on cache failure")
	}
	if len(result.Embedding) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestCachedEmbedder_ProviderErrorPropagates(t *testing.T) {
	inner := &mockInner{err: domain.ErrEmbeddingProvider}
	c := New(inner, newMockStore(), "m", nil, zap.NewNop())

	_, err := c.Embed(context.Background(), "anything")
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestVectorBytesRoundTrip(t *testing.T) {
	vec := []float32{0, -0.5, 1e9, 3.14159}
	got, err := bytesToVector(vectorToCacheBytes(vec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, vec) {
		t.Errorf("round trip mismatch: %v vs %v", got, vec)
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("non-multiple-of-4 data should fail")
	}
}
