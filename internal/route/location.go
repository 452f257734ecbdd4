package route

import (
	"path"
	"strings"
)

// Root is the canonical catalog location.
const Root = "./"

// Segment returns the final non-empty path segment of location, or "".
func Segment(location string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(location), "/")
	if trimmed == "" {
		return ""
	}
	seg := path.Base(trimmed)
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}

// Derive maps a location to a route. exists reports whether an identifier
// is registered; unknown identifiers resolve to the catalog.
func Derive(location string, aliases AliasTable, exists func(id string) bool) Route {
	seg := Segment(location)
	if seg == "" {
		return CatalogRoute()
	}
	id := aliases.Reverse(seg)
	if exists == nil || !exists(id) {
		return CatalogRoute()
	}
	return ModuleRoute(id)
}

// Synthesize renders the canonical location for r.
func Synthesize(r Route, aliases AliasTable) string {
	if r.Kind != Module || r.ID == "" {
		return Root
	}
	return Root + aliases.Forward(r.ID)
}
