package errors

import (
	"fmt"
	"testing"
)

func TestKindUnwrapsContext(t *testing.T) {
	wrapped := fmt.Errorf("mint: %w", ErrMaxSupplyReached)
	if got := Kind(wrapped); got != "max_supply_reached" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := Kind(nil); got != "ok" {
		t.Fatalf("unexpected kind for nil: %q", got)
	}
	if got := Kind(fmt.Errorf("boom")); got != "internal" {
		t.Fatalf("unexpected kind for unknown error: %q", got)
	}
	cfg := fmt.Errorf("%w: %w", ErrInvalidConfig, ErrSupplyExceedsCap)
	if got := Kind(cfg); got != "invalid_config" {
		t.Fatalf("unexpected kind for config error: %q", got)
	}
}
