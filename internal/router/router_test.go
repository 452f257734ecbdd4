package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/bdhub/internal/history"
	"github.com/jask/bdhub/internal/hub"
	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/route"
)

type nopModule struct{ id string }

func (m nopModule) ID() string                                       { return m.id }
func (m nopModule) Name() string                                     { return m.id }
func (m nopModule) Mount(context.Context, lifecycle.Container) error { return nil }
func (m nopModule) Unmount(context.Context) error                    { return nil }

type catalogView struct {
	ids      []string
	onSelect func(string)
}

func (v *catalogView) Update(tea.Msg) tea.Cmd { return nil }
func (v *catalogView) View(int, int) string   { return "catalog" }

type textView string

func (v textView) Update(tea.Msg) tea.Cmd { return nil }
func (v textView) View(int, int) string   { return string(v) }

type fixture struct {
	router  *Router
	history *history.Stack
	region  *lifecycle.Region
	delay   time.Duration

	mu      sync.Mutex
	routes  []route.Route
	renders int
}

func newFixture(t *testing.T, location string, aliases map[string]string, ids ...string) *fixture {
	t.Helper()
	descs := make([]hub.Descriptor, 0, len(ids))
	for _, id := range ids {
		descs = append(descs, hub.Descriptor{ID: id, Title: id, Module: nopModule{id: id}})
	}
	reg, err := hub.NewRegistry(descs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	tbl, err := route.NewAliasTable(aliases)
	if err != nil {
		t.Fatalf("aliases: %v", err)
	}
	f := &fixture{history: history.NewStack(location), region: lifecycle.NewRegion(nil)}
	f.router, err = New(Options{
		Registry: reg,
		Aliases:  tbl,
		History:  f.history,
		Content:  f.region,
		Catalog: func(descs []hub.Descriptor, onSelect func(string)) lifecycle.View {
			time.Sleep(f.delay)
			f.mu.Lock()
			f.renders++
			f.mu.Unlock()
			v := &catalogView{onSelect: onSelect}
			for _, d := range descs {
				v.ids = append(v.ids, d.ID)
			}
			return v
		},
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	f.router.OnChange(func(r route.Route) {
		f.mu.Lock()
		f.routes = append(f.routes, r)
		f.mu.Unlock()
	})
	return f
}

func (f *fixture) last() route.Route {
	if len(f.routes) == 0 {
		return route.Route{Kind: -1}
	}
	return f.routes[len(f.routes)-1]
}

func TestStartResolvesModuleFromLocation(t *testing.T) {
	f := newFixture(t, "/b", nil, "a", "b")
	f.router.Start()

	if got := f.router.State(); got != route.ModuleRoute("b") {
		t.Fatalf("state = %v", got)
	}
	if len(f.routes) != 1 || f.last() != route.ModuleRoute("b") {
		t.Fatalf("notifications = %v", f.routes)
	}
	if !f.region.Empty() {
		t.Fatalf("router must leave the region empty for the shell")
	}
	if f.history.Len() != 1 || f.history.Location() != "./b" {
		t.Fatalf("start must replace, not push: len=%d loc=%q", f.history.Len(), f.history.Location())
	}
}

func TestStartAtRootShowsCatalog(t *testing.T) {
	f := newFixture(t, "/", nil, "a", "b")
	f.router.Start()

	if !f.router.State().IsCatalog() {
		t.Fatalf("state = %v", f.router.State())
	}
	v, ok := f.region.Current().(*catalogView)
	if !ok {
		t.Fatalf("region should hold the catalog view")
	}
	if len(v.ids) != 2 || v.ids[0] != "a" || v.ids[1] != "b" {
		t.Fatalf("catalog ids = %v", v.ids)
	}
	if f.history.Len() != 1 || f.history.Location() != "./" {
		t.Fatalf("history = %d %q", f.history.Len(), f.history.Location())
	}
}

func TestStartWithUnknownSegmentFallsBackToCatalog(t *testing.T) {
	f := newFixture(t, "./gone", nil, "a")
	f.router.Start()
	if !f.router.State().IsCatalog() || f.history.Location() != "./" {
		t.Fatalf("state=%v loc=%q", f.router.State(), f.history.Location())
	}
}

func TestGoModuleUnknownBehavesLikeGoCatalog(t *testing.T) {
	f := newFixture(t, "./", nil, "a")
	f.router.Start()
	f.router.GoModule("a")
	f.router.GoModule("missing")

	if f.last() != route.CatalogRoute() {
		t.Fatalf("last notification = %v", f.last())
	}
	for _, r := range f.routes {
		if r.Kind == route.Module && r.ID == "missing" {
			t.Fatalf("unknown id must never be notified")
		}
	}
	if _, ok := f.region.Current().(*catalogView); !ok {
		t.Fatalf("catalog should be rendered")
	}
	if f.history.Location() != "./" {
		t.Fatalf("location = %q", f.history.Location())
	}
}

func TestGoModulePushesAliasedLocation(t *testing.T) {
	f := newFixture(t, "./", map[string]string{"note-shooter": "shoot"}, "note-shooter", "b")
	f.router.Start()
	f.router.GoModule("note-shooter")

	if got := f.history.Location(); got != "./shoot" {
		t.Fatalf("location = %q", got)
	}
	if f.history.Len() != 2 {
		t.Fatalf("explicit navigation should push, len=%d", f.history.Len())
	}

	fresh := newFixture(t, f.history.Location(), map[string]string{"note-shooter": "shoot"}, "note-shooter", "b")
	fresh.router.Start()
	if got := fresh.router.State(); got != route.ModuleRoute("note-shooter") {
		t.Fatalf("fresh start = %v", got)
	}
}

func TestBackForwardDoNotPush(t *testing.T) {
	f := newFixture(t, "./", nil, "a", "b")
	f.router.Start()
	f.router.GoModule("a")
	f.router.GoModule("b")
	before := f.history.Len()

	if !f.router.Back() {
		t.Fatalf("back should succeed")
	}
	if got := f.router.State(); got != route.ModuleRoute("a") {
		t.Fatalf("after back = %v", got)
	}
	if !f.router.Back() || !f.router.State().IsCatalog() {
		t.Fatalf("second back should reach the catalog, got %v", f.router.State())
	}
	if _, ok := f.region.Current().(*catalogView); !ok {
		t.Fatalf("back to root should re-render the catalog")
	}
	if !f.router.Forward() || f.router.State() != route.ModuleRoute("a") {
		t.Fatalf("forward = %v", f.router.State())
	}
	if f.history.Len() != before {
		t.Fatalf("history grew during back/forward: %d -> %d", before, f.history.Len())
	}
	if f.last() != route.ModuleRoute("a") {
		t.Fatalf("pop must notify, last = %v", f.last())
	}
}

func TestCatalogSelectionNavigates(t *testing.T) {
	f := newFixture(t, "./", nil, "a", "b")
	f.router.Start()
	v := f.region.Current().(*catalogView)
	v.onSelect("b")
	if f.router.State() != route.ModuleRoute("b") {
		t.Fatalf("selection should navigate, state = %v", f.router.State())
	}
}

func TestGoCatalogRendersFreshView(t *testing.T) {
	f := newFixture(t, "./", nil, "a")
	f.router.Start()
	f.router.GoCatalog()
	if f.renders != 2 {
		t.Fatalf("renders = %d, want 2", f.renders)
	}
	if f.history.Len() != 1 {
		t.Fatalf("catalog to catalog should not stack entries, len=%d", f.history.Len())
	}
}

func TestNewRejectsShadowingAlias(t *testing.T) {
	reg, _ := hub.NewRegistry(
		hub.Descriptor{ID: "a", Module: nopModule{id: "a"}},
		hub.Descriptor{ID: "b", Module: nopModule{id: "b"}},
	)
	tbl, _ := route.NewAliasTable(map[string]string{"a": "b"})
	_, err := New(Options{
		Registry: reg,
		Aliases:  tbl,
		History:  history.NewStack("./"),
		Content:  lifecycle.NewRegion(nil),
		Catalog:  func([]hub.Descriptor, func(string)) lifecycle.View { return nil },
	})
	if !errors.Is(err, route.ErrAliasConflict) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresContent(t *testing.T) {
	reg, _ := hub.NewRegistry()
	_, err := New(Options{Registry: reg, History: history.NewStack("./"), Catalog: func([]hub.Descriptor, func(string)) lifecycle.View { return nil }})
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("err = %v", err)
	}
}

func TestGrantFollowsTheCommittedModule(t *testing.T) {
	f := newFixture(t, "./", nil, "a", "b")
	f.router.Start()
	f.router.GoModule("a")

	if _, ok := f.router.Grant("b"); ok {
		t.Fatalf("grant for a route that is not current")
	}
	lease, ok := f.router.Grant("a")
	if !ok {
		t.Fatalf("grant for the current module failed")
	}
	lease.Replace(textView("a"))
	if f.region.Render(10, 1) != "a" {
		t.Fatalf("granted lease should draw")
	}

	f.router.GoCatalog()
	if _, ok := f.router.Grant("a"); ok {
		t.Fatalf("grant must fail once the catalog took the region")
	}
	lease.Replace(textView("late"))
	if _, ok := f.region.Current().(*catalogView); !ok {
		t.Fatalf("late module write replaced the catalog")
	}
}

func TestReleaseReturnsToCatalogOnlyWhileOwner(t *testing.T) {
	f := newFixture(t, "./", nil, "a", "b")
	f.router.Start()
	f.router.GoModule("a")
	lease, _ := f.router.Grant("a")

	f.router.GoModule("b")
	if f.router.Release(lease) {
		t.Fatalf("a stale lease must not pull the user off b")
	}
	if f.router.State() != route.ModuleRoute("b") {
		t.Fatalf("state = %v", f.router.State())
	}

	current, _ := f.router.Grant("b")
	if !f.router.Release(current) {
		t.Fatalf("release of the current lease should succeed")
	}
	if !f.router.State().IsCatalog() || f.history.Location() != "./" || f.last() != route.CatalogRoute() {
		t.Fatalf("state=%v loc=%q last=%v", f.router.State(), f.history.Location(), f.last())
	}
}

func TestConcurrentNavigationsAgree(t *testing.T) {
	f := newFixture(t, "./", nil, "a")
	f.delay = 2 * time.Millisecond
	f.router.Start()

	for i := 0; i < 20; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.router.GoCatalog()
		}()
		go func() {
			defer wg.Done()
			f.router.GoModule("a")
		}()
		wg.Wait()

		state := f.router.State()
		_, catalogShown := f.region.Current().(*catalogView)
		if state.IsCatalog() != catalogShown {
			t.Fatalf("round %d: state=%v but catalogShown=%v", i, state, catalogShown)
		}
		if want := route.Synthesize(state, f.router.Aliases()); f.history.Location() != want {
			t.Fatalf("round %d: state=%v location=%q", i, state, f.history.Location())
		}
	}
}
