package route

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrAliasInvalid  = errors.New("route: invalid alias entry")
	ErrAliasConflict = errors.New("route: alias conflict")
)

// AliasTable maps module identifiers to shorter path segments and back.
// Forward and reverse maps are exact inverses; identifiers without an
// entry use themselves as the segment.
type AliasTable struct {
	forward map[string]string
	reverse map[string]string
}

// NewAliasTable builds a table from id -> alias pairs.
func NewAliasTable(pairs map[string]string) (AliasTable, error) {
	t := AliasTable{
		forward: make(map[string]string, len(pairs)),
		reverse: make(map[string]string, len(pairs)),
	}
	ids := slices.Sorted(maps.Keys(pairs))
	for _, id := range ids {
		alias := pairs[id]
		if !validSegment(id) || !validSegment(alias) {
			return AliasTable{}, fmt.Errorf("%w: %q -> %q", ErrAliasInvalid, id, alias)
		}
		if other, taken := t.reverse[alias]; taken {
			return AliasTable{}, fmt.Errorf("%w: %q used by %q and %q", ErrAliasConflict, alias, other, id)
		}
		t.forward[id] = alias
		t.reverse[alias] = id
	}
	return t, nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, "/ ")
}

// Forward returns the path segment for id.
func (t AliasTable) Forward(id string) string {
	if alias, ok := t.forward[id]; ok {
		return alias
	}
	return id
}

// Reverse returns the candidate identifier for a path segment.
func (t AliasTable) Reverse(segment string) string {
	if id, ok := t.reverse[segment]; ok {
		return id
	}
	return segment
}

func (t AliasTable) Len() int { return len(t.forward) }

// Validate rejects an alias equal to a different registered identifier;
// that identifier's own location would otherwise parse as the aliased one.
func (t AliasTable) Validate(ids []string) error {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	for alias, id := range t.reverse {
		if alias != id && known[alias] {
			return fmt.Errorf("%w: alias %q for %q shadows a registered id", ErrAliasConflict, alias, id)
		}
	}
	return nil
}
