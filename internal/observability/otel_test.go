package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc , bad, =x, team=core ")
	if len(got) != 2 || got["api-key"] != "abc" || got["team"] != "core" {
		t.Fatalf("unexpected headers: %+v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatalf("clampRatio out of bounds")
	}
}

func TestInitOTelDisabledReturnsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	if shutdown == nil {
		t.Fatalf("expected non-nil shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}
}
