package interpret

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/ppetroskevicius/fastctl-search/internal/domain"
	"github.com/ppetroskevicius/fastctl-search/internal/domain/query"
)

// --- Mocks ---

type extractCall struct {
	rawQuery   string
	correction string
}

type mockExtractor struct {
	calls   []extractCall
	results []func() (query.Elements, error)
}

func (m *mockExtractor) Extract(_ context.Context, rawQuery, correction string) (query.Elements, error) {
	m.calls = append(m.calls, extractCall{rawQuery: rawQuery, correction: correction})
	if len(m.results) == 0 {
		return query.Elements{}, errors.New("no scripted result")
	}
	next := m.results[0]
	m.results = m.results[1:]
	return next()
}

func ok(e query.Elements) func() (query.Elements, error) {
	return func() (query.Elements, error) { return e, nil }
}

func fail(err error) func() (query.Elements, error) {
	return func() (query.Elements, error) { return query.Elements{}, err }
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// --- Tests ---

func TestInterpret_Success(t *testing.T) {
	ext := &mockExtractor{results: []func() (query.Elements, error){
		ok(query.Elements{
			SemanticText:    "  bright apartment ",
			MaxMonthlyPrice: intPtr(200000),
			Ward:            strPtr(" Shibuya "),
		}),
	}}
	svc := New(ext, zap.NewNop())

	elements, err := svc.Interpret(context.Background(), "bright apartment in Shibuya under 200k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elements.SemanticText != "bright apartment" {
		t.Errorf("semantic text not normalized: %q", elements.SemanticText)
	}
	if elements.Ward == nil || *elements.Ward != "Shibuya" {
		t.Errorf("ward not normalized: %v", elements.Ward)
	}
	if elements.Degraded {
		t.Error("successful extraction must not be marked degraded")
	}
	if len(ext.calls) != 1 {
		t.Errorf("expected 1 extraction call, got %d", len(ext.calls))
	}
}

func TestInterpret_EmptySemanticTextFallsBackToRawQuery(t *testing.T) {
	ext := &mockExtractor{results: []func() (query.Elements, error){
		ok(query.Elements{MaxMonthlyPrice: intPtr(100000)}),
	}}
	svc := New(ext, zap.NewNop())

	elements, err := svc.Interpret(context.Background(), "cheap place")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elements.SemanticText != "cheap place" {
		t.Errorf("expected raw query fallback, got %q", elements.SemanticText)
	}
}

func TestInterpret_MalformedOutputRetriedOnceWithCorrection(t *testing.T) {
	parseErr := fmt.Errorf("%w: decode completion: unexpected token", domain.ErrMalformedExtraction)
	ext := &mockExtractor{results: []func() (query.Elements, error){
		fail(parseErr),
		ok(query.Elements{SemanticText: "pet friendly flat", MaxMonthlyPrice: intPtr(150000)}),
	}}
	svc := New(ext, zap.NewNop())

	elements, err := svc.Interpret(context.Background(), "pet friendly flat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elements.MaxMonthlyPrice == nil {
		t.Error("retry result should be used")
	}

	if len(ext.calls) != 2 {
		t.Fatalf("expected 2 extraction calls, got %d", len(ext.calls))
	}
	if ext.calls[0].correction != "" {
		t.Error("first attempt must carry no correction")
	}
	if ext.calls[1].correction == "" {
		t.Error("retry must carry a corrective instruction")
	}
}

func TestInterpret_DoubleFailureDegradesToPureSemantic(t *testing.T) {
	ext := &mockExtractor{results: []func() (query.Elements, error){
		fail(domain.ErrMalformedExtraction),
		fail(domain.ErrMalformedExtraction),
	}}
	svc := New(ext, zap.NewNop())

	elements, err := svc.Interpret(context.Background(), "somewhere nice")
	if err != nil {
		t.Fatalf("degradation must not surface an error: %v", err)
	}
	if elements.SemanticText != "somewhere nice" {
		t.Errorf("degraded elements should carry the raw query, got %q", elements.SemanticText)
	}
	if elements.HasConstraints() {
		t.Error("degraded elements must carry no structured constraints")
	}
	if !elements.Degraded {
		t.Error("double failure must mark the elements degraded")
	}
	if len(ext.calls) != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", len(ext.calls))
	}
}

func TestInterpret_TransportFailureDegradesWithoutRetry(t *testing.T) {
	ext := &mockExtractor{results: []func() (query.Elements, error){
		fail(fmt.Errorf("%w: chat completion: connection refused", domain.ErrExtraction)),
	}}
	svc := New(ext, zap.NewNop())

	elements, err := svc.Interpret(context.Background(), "quiet street")
	if err != nil {
		t.Fatalf("degradation must not surface an error: %v", err)
	}
	if elements.SemanticText != "quiet street" {
		t.Errorf("degraded elements should carry the raw query, got %q", elements.SemanticText)
	}
	if !elements.Degraded {
		t.Error("transport failure must mark the elements degraded")
	}
	if len(ext.calls) != 1 {
		t.Errorf("transport failure must not trigger a retry, got %d calls", len(ext.calls))
	}
}

func TestInterpret_ValidationErrorPropagates(t *testing.T) {
	ext := &mockExtractor{results: []func() (query.Elements, error){
		ok(query.Elements{MinFloor: intPtr(9), MaxFloor: intPtr(2)}),
	}}
	svc := New(ext, zap.NewNop())

	_, err := svc.Interpret(context.Background(), "high floor but low floor")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error should wrap ErrValidation: %v", err)
	}
	if len(ext.calls) != 1 {
		t.Errorf("validation failures must never go back to the model, got %d calls", len(ext.calls))
	}
}
