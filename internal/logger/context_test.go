package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestRequestLoggerRoundTrip(t *testing.T) {
	l := zap.NewNop().With(zap.String("request_id", "req-1"))
	ctx := WithRequest(context.Background(), l)

	if got := FromContext(ctx); got != l {
		t.Error("stored logger not returned")
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	got := FromContext(context.Background())
	if got == nil {
		t.Fatal("bare context must yield a usable logger, not nil")
	}
	got.Info("must not panic")
}
