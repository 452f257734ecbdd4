package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestPaletteColorsAreHex(t *testing.T) {
	for _, c := range Palette() {
		s := string(c)
		if len(s) != 7 || !strings.HasPrefix(s, "#") {
			t.Fatalf("color %q is not #rrggbb", s)
		}
	}
}

func TestBarFillsWidth(t *testing.T) {
	got := Bar(lipgloss.NewStyle(), 12, "hello\nworld", Mantle)
	if w := ansi.StringWidth(got); w != 12 {
		t.Fatalf("width = %d, want 12", w)
	}
	if strings.Contains(got, "\n") {
		t.Fatalf("bar must be a single line: %q", got)
	}
}

func TestBarTruncatesLongText(t *testing.T) {
	got := Bar(lipgloss.NewStyle(), 4, "abcdefgh", Mantle)
	if w := ansi.StringWidth(got); w != 4 {
		t.Fatalf("width = %d, want 4", w)
	}
}

func TestClipHeight(t *testing.T) {
	if got := ClipHeight("a\nb\nc", 2); got != "a\nb" {
		t.Fatalf("ClipHeight = %q", got)
	}
	if got := ClipHeight("a", 0); got != "" {
		t.Fatalf("ClipHeight(0) = %q", got)
	}
}
