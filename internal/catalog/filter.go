package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/bdhub/internal/hub"
)

// list is the cursor and filter state behind the catalog view.
type list struct {
	entries  []hub.Descriptor
	filtered []int
	query    string
	cursor   int
	// suggesting is set when filtered holds near misses instead of matches.
	suggesting bool
	maxDist    int
}

func newList(entries []hub.Descriptor, maxDist int) *list {
	l := &list{entries: entries, maxDist: maxDist}
	l.rebuild()
	return l
}

func (l *list) setQuery(q string) {
	if q == l.query {
		return
	}
	l.query = q
	l.rebuild()
}

func (l *list) up() bool {
	if l.cursor == 0 {
		return false
	}
	l.cursor--
	return true
}

func (l *list) down() bool {
	if l.cursor >= len(l.filtered)-1 {
		return false
	}
	l.cursor++
	return true
}

func (l *list) current() (hub.Descriptor, bool) {
	if len(l.filtered) == 0 {
		return hub.Descriptor{}, false
	}
	return l.entries[l.filtered[l.cursor]], true
}

func (l *list) visible() []hub.Descriptor {
	out := make([]hub.Descriptor, 0, len(l.filtered))
	for _, idx := range l.filtered {
		out = append(out, l.entries[idx])
	}
	return out
}

func (l *list) rebuild() {
	q := strings.ToLower(strings.TrimSpace(l.query))
	l.filtered = l.filtered[:0]
	l.suggesting = false
	for idx, d := range l.entries {
		if q == "" || strings.Contains(haystack(d), q) {
			l.filtered = append(l.filtered, idx)
		}
	}
	if len(l.filtered) == 0 && q != "" {
		l.filtered = l.suggest(q)
		l.suggesting = len(l.filtered) > 0
	}
	switch {
	case len(l.filtered) == 0:
		l.cursor = 0
	case l.cursor > len(l.filtered)-1:
		l.cursor = len(l.filtered) - 1
	}
}

type scored struct {
	index int
	dist  int
}

// suggest returns entries whose id or title is close to q, nearest first.
func (l *list) suggest(q string) []int {
	limit := l.maxDist
	if limit <= 0 {
		limit = max(2, len(q)/3)
	}
	var hits []scored
	for idx, d := range l.entries {
		dist := -1
		for _, word := range candidates(d) {
			if n := levenshtein.ComputeDistance(q, word); dist < 0 || n < dist {
				dist = n
			}
		}
		if dist >= 0 && dist <= limit {
			hits = append(hits, scored{index: idx, dist: dist})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.index)
	}
	return out
}

// candidates are the id, the title and each of their words, lower-cased.
func candidates(d hub.Descriptor) []string {
	id, title := strings.ToLower(d.ID), strings.ToLower(d.Title)
	out := []string{id, title}
	split := func(r rune) bool { return r == '-' || r == ' ' || r == '_' }
	out = append(out, strings.FieldsFunc(id, split)...)
	out = append(out, strings.FieldsFunc(title, split)...)
	return out
}

func haystack(d hub.Descriptor) string {
	parts := []string{d.ID, d.Title, d.Description}
	parts = append(parts, d.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}
