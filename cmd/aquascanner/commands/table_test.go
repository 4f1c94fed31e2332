package commands

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTruncateKeepsShortNames(t *testing.T) {
	t.Parallel()

	if got := truncate("Неон голубой"); got != "Неон голубой" {
		t.Fatalf("short name changed: %q", got)
	}
}

func TestTruncateLongNames(t *testing.T) {
	t.Parallel()

	got := truncate(strings.Repeat("рыба ", 30))
	if w := runewidth.StringWidth(got); w > maxCellWidth {
		t.Fatalf("truncated width %d exceeds %d", w, maxCellWidth)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}
