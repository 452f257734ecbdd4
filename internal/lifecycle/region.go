package lifecycle

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Region is the single shared content area. Exactly one writer owns it at a
// time: the catalog or the running module.
//
// Replace, Clear and Reserve on the Region itself take ownership and revoke
// every outstanding Lease. A Lease writes to the region only while it is the
// newest owner, so a module tearing down late cannot erase what replaced it.
type Region struct {
	mu      sync.Mutex
	view    View
	gen     uint64
	redraw  func()
	changes int
}

// NewRegion returns an empty region. redraw may be nil.
func NewRegion(redraw func()) *Region {
	return &Region{redraw: redraw}
}

func (r *Region) Replace(v View) {
	r.mu.Lock()
	r.gen++
	r.view = v
	r.changes++
	r.mu.Unlock()
	r.Invalidate()
}

func (r *Region) Clear() {
	r.Replace(nil)
}

func (r *Region) Invalidate() {
	r.mu.Lock()
	fn := r.redraw
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Reserve empties the region and hands ownership to a new writer. The
// lease stays valid until the next Replace, Clear or Reserve.
func (r *Region) Reserve() *Lease {
	r.mu.Lock()
	r.gen++
	r.view = nil
	r.changes++
	l := &Lease{region: r, gen: r.gen}
	r.mu.Unlock()
	r.Invalidate()
	return l
}

func (r *Region) writeIf(gen uint64, v View) bool {
	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return false
	}
	r.view = v
	r.changes++
	r.mu.Unlock()
	r.Invalidate()
	return true
}

// Current returns the owning view, or nil when the region is empty.
func (r *Region) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *Region) Empty() bool {
	return r.Current() == nil
}

// Changes counts writes that reached the region.
func (r *Region) Changes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changes
}

// Update forwards msg to the owning view. The lock is not held while the
// view runs, so the view may navigate (and so replace the region) itself.
func (r *Region) Update(msg tea.Msg) tea.Cmd {
	v := r.Current()
	if v == nil {
		return nil
	}
	return v.Update(msg)
}

func (r *Region) Render(width, height int) string {
	v := r.Current()
	if v == nil || width <= 0 || height <= 0 {
		return ""
	}
	return v.View(width, height)
}

// Lease is a Container scoped to one ownership period of a Region.
type Lease struct {
	region *Region
	gen    uint64
}

func (l *Lease) Replace(v View) { l.region.writeIf(l.gen, v) }

func (l *Lease) Clear() { l.region.writeIf(l.gen, nil) }

func (l *Lease) Invalidate() { l.region.Invalidate() }

// Active reports whether the lease still owns the region.
func (l *Lease) Active() bool {
	l.region.mu.Lock()
	defer l.region.mu.Unlock()
	return l.region.gen == l.gen
}
