// Package history keeps the hub's navigable location history: an entry list
// with a cursor, plus listeners notified when Back or Forward moves it.
package history

import (
	"slices"
	"sync"
)

type Stack struct {
	mu        sync.Mutex
	items     []string
	cursor    int
	listeners []func(location string)
}

func NewStack(initial string) *Stack {
	return &Stack{items: []string{initial}}
}

// OnPop registers fn to run after Back or Forward changed the location.
func (s *Stack) OnPop(fn func(location string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Stack) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[s.cursor]
}

// Push adds a new entry after the cursor, dropping any forward entries.
func (s *Stack) Push(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items[:s.cursor+1], location)
	s.cursor = len(s.items) - 1
}

// Replace overwrites the current entry.
func (s *Stack) Replace(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[s.cursor] = location
}

func (s *Stack) Back() bool {
	return s.move(-1)
}

func (s *Stack) Forward() bool {
	return s.move(1)
}

func (s *Stack) CanBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

func (s *Stack) CanForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.items)-1
}

func (s *Stack) move(delta int) bool {
	s.mu.Lock()
	next := s.cursor + delta
	if next < 0 || next >= len(s.items) {
		s.mu.Unlock()
		return false
	}
	s.cursor = next
	loc := s.items[next]
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
	return true
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Entries returns a copy of every entry and the cursor index.
func (s *Stack) Entries() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), s.cursor
}
