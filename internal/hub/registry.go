package hub

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jask/bdhub/internal/lifecycle"
)

var (
	ErrEmptyID            = errors.New("hub: descriptor id is empty")
	ErrDuplicateID        = errors.New("hub: duplicate descriptor id")
	ErrMissingModule      = errors.New("hub: descriptor has no module")
	ErrIDMismatch         = errors.New("hub: module id does not match descriptor id")
	ErrAlreadyInitialized = errors.New("hub: registry already initialized")
)

// Attribution credits the upstream project a game was adapted from.
type Attribution struct {
	Name string
	URL  string
}

// Descriptor pairs display metadata with the module instance it owns.
type Descriptor struct {
	ID          string
	Title       string
	Description string
	Cover       string
	Tags        []string
	Source      *Attribution
	Module      lifecycle.Module
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Tags = slices.Clone(d.Tags)
	if d.Source != nil {
		src := *d.Source
		out.Source = &src
	}
	return out
}

// Registry is an immutable, ordered lookup of descriptors.
type Registry struct {
	order []Descriptor
	byID  map[string]int
}

// NewRegistry validates descs and freezes them in registration order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]Descriptor, 0, len(descs)),
		byID:  make(map[string]int, len(descs)),
	}
	for _, d := range descs {
		switch {
		case d.ID == "":
			return nil, ErrEmptyID
		case d.Module == nil:
			return nil, fmt.Errorf("%w: %q", ErrMissingModule, d.ID)
		case d.Module.ID() != d.ID:
			return nil, fmt.Errorf("%w: descriptor %q, module %q", ErrIDMismatch, d.ID, d.Module.ID())
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		r.byID[d.ID] = len(r.order)
		r.order = append(r.order, d.clone())
	}
	return r, nil
}

// List returns every descriptor in registration order. The slice is a copy.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, d := range r.order {
		out = append(out, d.clone())
	}
	return out
}

// Find looks id up exactly. A miss is not an error.
func (r *Registry) Find(id string) (Descriptor, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.order[idx].clone(), true
}

func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.order))
	for _, d := range r.order {
		out = append(out, d.ID)
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}

var (
	defaultMu  sync.Mutex
	defaultReg *Registry
)

// Init builds the process-wide registry. It may succeed only once.
func Init(descs ...Descriptor) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg != nil {
		return ErrAlreadyInitialized
	}
	reg, err := NewRegistry(descs...)
	if err != nil {
		return err
	}
	defaultReg = reg
	return nil
}

// Default returns the registry built by Init.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		panic("hub: Default called before Init")
	}
	return defaultReg
}
