package analyze

import (
	"strings"
	"testing"
)

func TestTruncate_Disabled(t *testing.T) {
	tr := newTruncator("some-model", 0)
	text := strings.Repeat("word ", 1000)
	got, truncated := tr.truncate(text)
	if truncated || got != text {
		t.Error("limit 0 should never truncate")
	}
}

func TestTruncate_RuneFallback(t *testing.T) {
	// Unknown model name forces the rune-estimate path.
	tr := newTruncator("no-such-model-xyz", 10)
	text := strings.Repeat("a", 100)
	got, truncated := tr.truncate(text)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Errorf("missing marker: %q", got)
	}
	if len(got) >= len(text) {
		t.Errorf("not shorter: %d vs %d", len(got), len(text))
	}
}

func TestTruncate_UnderLimit(t *testing.T) {
	tr := newTruncator("no-such-model-xyz", 10)
	got, truncated := tr.truncate("short")
	if truncated || got != "short" {
		t.Errorf("got %q, truncated=%v", got, truncated)
	}
}
