package tui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	ScopeCatalog = "catalog"
	ScopeModule  = "module"
)

const (
	ActionForceQuit = "force-quit"
	ActionQuit      = "quit"
	ActionHub       = "back-to-hub"
	ActionBack      = "history-back"
	ActionForward   = "history-forward"
	// ActionHint bindings are handled by the body view and only shown in
	// the footer.
	ActionHint = "hint"
)

type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func DefaultKeyBindings() []KeyBinding {
	return []KeyBinding{
		{Keys: []string{"ctrl+c"}, Action: ActionForceQuit, Description: "quit", Scopes: []string{ScopeModule}},
		{Keys: []string{"q", "ctrl+c"}, Action: ActionQuit, Description: "quit", Scopes: []string{ScopeCatalog}},
		{Keys: []string{"esc"}, Action: ActionHub, Description: "back to hub", Scopes: []string{ScopeModule}},
		{Keys: []string{"alt+left"}, Action: ActionBack, Description: "back", Scopes: []string{"*"}},
		{Keys: []string{"alt+right"}, Action: ActionForward, Description: "forward", Scopes: []string{"*"}},
		{Keys: []string{"enter"}, Action: ActionHint, Description: "play", Scopes: []string{ScopeCatalog}},
		{Keys: []string{"/"}, Action: ActionHint, Description: "filter", Scopes: []string{ScopeCatalog}},
		{Keys: []string{"o"}, Action: ActionHint, Description: "source", Scopes: []string{ScopeCatalog}},
	}
}

func (r *KeyRegistry) Register(binding KeyBinding) {
	r.bindings = append(r.bindings, binding)
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

func (r *KeyRegistry) IsAction(msg tea.KeyMsg, action, scope string) bool {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if b.Action != action || !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if normalizeKey(k) == pressed {
				return true
			}
		}
	}
	return false
}

// Action returns the first non-hint action bound to msg in scope.
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) (string, bool) {
	pressed := normalizeKey(msg.String())
	for _, b := range r.bindings {
		if b.Action == ActionHint || !scopeMatch(scope, b.Scopes) {
			continue
		}
		if slices.ContainsFunc(b.Keys, func(k string) bool { return normalizeKey(k) == pressed }) {
			return b.Action, true
		}
	}
	return "", false
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}
