// Package router owns the hub's route state. It keeps the route in step with
// the location history and renders the catalog into the content region;
// mounting modules is left to whoever listens for route changes.
package router

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/bdhub/internal/history"
	"github.com/jask/bdhub/internal/hub"
	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/metrics"
	"github.com/jask/bdhub/internal/route"
)

var ErrMissingDependency = errors.New("router: missing dependency")

// Registry is the read side of hub.Registry the router needs.
type Registry interface {
	List() []hub.Descriptor
	Find(id string) (hub.Descriptor, bool)
	IDs() []string
}

// CatalogFactory renders the catalog; onSelect receives a descriptor id.
type CatalogFactory func(descs []hub.Descriptor, onSelect func(id string)) lifecycle.View

// Content is the region the router draws the catalog into and reserves for
// modules. *lifecycle.Region implements it.
type Content interface {
	Replace(v lifecycle.View)
	Reserve() *lifecycle.Lease
}

type Options struct {
	Registry Registry
	Aliases  route.AliasTable
	History  *history.Stack
	Content  Content
	Catalog  CatalogFactory
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

type Router struct {
	registry Registry
	aliases  route.AliasTable
	history  *history.Stack
	content  Content
	catalog  CatalogFactory
	log      *zap.Logger
	metrics  *metrics.Metrics

	// nav serializes commits: state, location and content change together.
	nav sync.Mutex

	mu        sync.Mutex
	state     route.Route
	lease     *lifecycle.Lease
	listeners []func(route.Route)
}

func New(opts Options) (*Router, error) {
	switch {
	case opts.Registry == nil:
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	case opts.History == nil:
		return nil, fmt.Errorf("%w: history", ErrMissingDependency)
	case opts.Content == nil:
		return nil, fmt.Errorf("%w: content region", ErrMissingDependency)
	case opts.Catalog == nil:
		return nil, fmt.Errorf("%w: catalog factory", ErrMissingDependency)
	}
	if err := opts.Aliases.Validate(opts.Registry.IDs()); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{
		registry: opts.Registry,
		aliases:  opts.Aliases,
		history:  opts.History,
		content:  opts.Content,
		catalog:  opts.Catalog,
		log:      log.Named("router"),
		metrics:  opts.Metrics,
		state:    route.CatalogRoute(),
	}
	opts.History.OnPop(r.handlePop)
	return r, nil
}

// OnChange subscribes fn to route-change notifications.
func (r *Router) OnChange(fn func(route.Route)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Start resolves the current location. The entry is rewritten in place.
func (r *Router) Start() {
	r.log.Debug("start", zap.String("location", r.history.Location()))
	r.resolve(false)
}

func (r *Router) GoCatalog() {
	r.navigate(route.CatalogRoute(), true)
}

// GoModule navigates to id; an unknown id lands on the catalog.
func (r *Router) GoModule(id string) {
	if !r.exists(id) {
		r.log.Debug("unknown module, showing catalog", zap.String("module", id))
		r.navigate(route.CatalogRoute(), true)
		return
	}
	r.navigate(route.ModuleRoute(id), true)
}

// Back and Forward move the history; the pop listener does the rest.
func (r *Router) Back() bool { return r.history.Back() }

func (r *Router) Forward() bool { return r.history.Forward() }

func (r *Router) CanBack() bool { return r.history.CanBack() }

func (r *Router) CanForward() bool { return r.history.CanForward() }

func (r *Router) State() route.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Router) Location() string {
	return r.history.Location()
}

func (r *Router) Aliases() route.AliasTable {
	return r.aliases
}

// Grant returns the content lease reserved when Module(id) was committed.
// It fails once a later navigation has taken the content back.
func (r *Router) Grant(id string) (*lifecycle.Lease, bool) {
	r.mu.Lock()
	state, lease := r.state, r.lease
	r.mu.Unlock()
	if state != route.ModuleRoute(id) || lease == nil || !lease.Active() {
		return nil, false
	}
	return lease, true
}

// Release returns to the catalog if l still owns the content, that is if
// nothing navigated since the module route that granted it.
func (r *Router) Release(l *lifecycle.Lease) bool {
	r.nav.Lock()
	if l == nil || !l.Active() {
		r.nav.Unlock()
		return false
	}
	next := route.CatalogRoute()
	r.commit(next, true)
	r.nav.Unlock()
	r.notify(next)
	return true
}

// handlePop runs after the history already moved, so nothing is pushed.
// The location is read again under the lock in case another navigation
// got there first.
func (r *Router) handlePop(location string) {
	r.log.Debug("history moved", zap.String("location", location))
	r.resolve(false)
}

func (r *Router) resolve(push bool) {
	r.nav.Lock()
	next := route.Derive(r.history.Location(), r.aliases, r.exists)
	r.commit(next, push)
	r.nav.Unlock()
	r.notify(next)
}

func (r *Router) navigate(next route.Route, push bool) {
	r.nav.Lock()
	r.commit(next, push)
	r.nav.Unlock()
	r.notify(next)
}

func (r *Router) exists(id string) bool {
	_, ok := r.registry.Find(id)
	return ok
}

// commit must hold nav. The catalog gets a fresh view; a module route gets
// an empty region reserved for the shell.
func (r *Router) commit(next route.Route, push bool) {
	var lease *lifecycle.Lease
	if next.IsCatalog() {
		r.content.Replace(r.catalog(r.registry.List(), r.GoModule))
	} else {
		lease = r.content.Reserve()
	}
	r.mu.Lock()
	r.state, r.lease = next, lease
	r.mu.Unlock()
	r.writeLocation(next, push)
}

func (r *Router) writeLocation(next route.Route, push bool) {
	loc := route.Synthesize(next, r.aliases)
	if r.history.Location() == loc {
		return
	}
	if push {
		r.history.Push(loc)
		return
	}
	r.history.Replace(loc)
}

func (r *Router) notify(next route.Route) {
	r.metrics.Navigation(next.Kind.String())
	r.mu.Lock()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
}
