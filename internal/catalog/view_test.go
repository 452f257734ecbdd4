package catalog

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/bdhub/internal/hub"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(v *View, s string) {
	for _, r := range s {
		v.Update(runes(string(r)))
	}
}

func sample() []hub.Descriptor {
	return []hub.Descriptor{
		{ID: "note-shooter", Title: "Note Shooter", Description: "Hit falling notes", Tags: []string{"rhythm", "arcade"},
			Source: &hub.Attribution{Name: "zfkdiyi/bangdream", URL: "https://github.com/zfkdiyi/bangdream"}},
		{ID: "puzzle-pico", Title: "Puzzle Pico", Description: "Turn every light off", Tags: []string{"puzzle"}},
		{ID: "bang-klotski", Title: "Bang Klotski", Description: "Slide the block to the exit", Tags: []string{"puzzle", "sliding"}},
	}
}

func newView(t *testing.T, opts ...Option) (*View, *[]string) {
	t.Helper()
	var picked []string
	v, ok := Render(sample(), func(id string) { picked = append(picked, id) }, opts...).(*View)
	if !ok {
		t.Fatalf("Render should return *View")
	}
	return v, &picked
}

func TestEnterSelectsDescriptorID(t *testing.T) {
	v, picked := newView(t)
	v.Update(runes("j"))
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(*picked) != 1 || (*picked)[0] != "puzzle-pico" {
		t.Fatalf("picked = %v", *picked)
	}
}

func TestCursorStopsAtEdges(t *testing.T) {
	v, _ := newView(t)
	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	if id, _ := v.Selected(); id != "note-shooter" {
		t.Fatalf("selected = %q", id)
	}
	for i := 0; i < 5; i++ {
		v.Update(runes("j"))
	}
	if id, _ := v.Selected(); id != "bang-klotski" {
		t.Fatalf("selected = %q", id)
	}
}

func TestFilterMatchesTagsAndDescriptions(t *testing.T) {
	v, _ := newView(t)
	v.Update(runes("/"))
	if !v.CapturingInput() {
		t.Fatalf("filter should capture input")
	}
	typeText(v, "puzzle")
	got := v.Visible()
	if len(got) != 2 || got[0] != "puzzle-pico" || got[1] != "bang-klotski" {
		t.Fatalf("visible = %v", got)
	}

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if v.CapturingInput() || len(v.Visible()) != 3 {
		t.Fatalf("esc should end the filter, visible = %v", v.Visible())
	}
}

func TestFilterKeysDoNotNavigate(t *testing.T) {
	v, picked := newView(t)
	v.Update(runes("/"))
	typeText(v, "jk")
	if id, _ := v.Selected(); id != "" {
		t.Fatalf("nothing should match %q, selected %q", "jk", id)
	}
	if len(*picked) != 0 {
		t.Fatalf("typing must not select")
	}
}

func TestNoMatchOffersSuggestions(t *testing.T) {
	v, _ := newView(t)
	v.Update(runes("/"))
	typeText(v, "klotsky")
	if !v.list.suggesting {
		t.Fatalf("expected suggestions for a near miss")
	}
	if got := v.Visible(); len(got) == 0 || got[0] != "bang-klotski" {
		t.Fatalf("suggestions = %v", got)
	}
	if !strings.Contains(v.View(80, 40), "Did you mean") {
		t.Fatalf("suggestion hint missing")
	}
}

func TestFarQueryHasNoSuggestions(t *testing.T) {
	v, _ := newView(t, WithSuggestDistance(1))
	v.Update(runes("/"))
	typeText(v, "zzzzzz")
	if len(v.Visible()) != 0 || v.list.suggesting {
		t.Fatalf("visible = %v", v.Visible())
	}
}

func TestOpenSourceUsesOpenerNotSelect(t *testing.T) {
	var opened []string
	v, picked := newView(t, WithOpener(func(url string) error {
		opened = append(opened, url)
		return nil
	}))
	v.Update(runes("o"))
	if len(opened) != 1 || opened[0] != "https://github.com/zfkdiyi/bangdream" {
		t.Fatalf("opened = %v", opened)
	}
	if len(*picked) != 0 {
		t.Fatalf("opening a link must not select the game")
	}
}

func TestOpenSourceReportsFailures(t *testing.T) {
	v, _ := newView(t, WithOpener(func(string) error { return errors.New("no browser") }))
	v.Update(runes("o"))
	if !strings.Contains(v.View(120, 40), "no browser") {
		t.Fatalf("failure should be shown")
	}
	v.Update(runes("j"))
	v.Update(runes("o"))
	if !strings.Contains(v.View(120, 40), "no source link") {
		t.Fatalf("missing link should be reported")
	}
}

func TestViewShowsCardsAndCopyright(t *testing.T) {
	v, _ := newView(t)
	out := v.View(100, 40)
	for _, want := range []string{"Note Shooter", "rhythm · arcade", "from zfkdiyi/bangdream", "copyright"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	if v.View(0, 10) != "" {
		t.Fatalf("zero width renders nothing")
	}
}

func TestEmptyCatalog(t *testing.T) {
	v := Render(nil, nil).(*View)
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := v.Selected(); ok {
		t.Fatalf("empty catalog has no selection")
	}
}

func TestCardsScrollWithCursor(t *testing.T) {
	var descs []hub.Descriptor
	for _, id := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"} {
		descs = append(descs, hub.Descriptor{ID: id, Title: strings.ToUpper(id), Description: "game " + id})
	}
	v := Render(descs, func(string) {}).(*View)

	// Each card is four rows; twelve rows leave room for two cards.
	out := v.View(60, 12)
	if !strings.Contains(out, "ALPHA") || strings.Contains(out, "FOXTROT") {
		t.Fatalf("top of the list should show first:\n%s", out)
	}
	if !strings.Contains(out, "↓ 4 more") {
		t.Fatalf("hidden cards should be hinted:\n%s", out)
	}

	for i := 0; i < 5; i++ {
		v.Update(runes("j"))
		out = v.View(60, 12)
		id, _ := v.Selected()
		if !strings.Contains(out, strings.ToUpper(id)) {
			t.Fatalf("cursor card %s scrolled off screen:\n%s", id, out)
		}
	}
	if strings.Contains(out, "ALPHA") || !strings.Contains(out, "↓ 0 more") {
		t.Fatalf("list should have scrolled to the end:\n%s", out)
	}

	for i := 0; i < 5; i++ {
		v.Update(runes("k"))
	}
	if out = v.View(60, 12); !strings.Contains(out, "ALPHA") {
		t.Fatalf("scrolling up should bring the first card back:\n%s", out)
	}
}
