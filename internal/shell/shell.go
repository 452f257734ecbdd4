// Package shell runs the mount/unmount protocol. It reacts to route changes
// by tearing down the running module before mounting the next one, and
// falls back to the catalog whenever a module fails.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/bdhub/internal/hub"
	"github.com/jask/bdhub/internal/lifecycle"
	"github.com/jask/bdhub/internal/metrics"
	"github.com/jask/bdhub/internal/route"
)

var (
	// ErrNoContent means the shell has nowhere to mount modules. The hub
	// cannot run without it.
	ErrNoContent = errors.New("shell: no content region to mount into")
	ErrNoRouter  = errors.New("shell: no router")
)

const (
	OutcomeFinished = "finished"
	OutcomeFailed   = "failed"
)

// Navigator is the part of the router the shell calls back into.
// *router.Router implements it.
type Navigator interface {
	State() route.Route
	// Grant hands over the region reserved for the current module route.
	Grant(id string) (*lifecycle.Lease, bool)
	// Release returns to the catalog unless a later navigation already
	// took the region from l.
	Release(l *lifecycle.Lease) bool
}

type Registry interface {
	Find(id string) (hub.Descriptor, bool)
}

// Recorder keeps a log of plays. Failures to record are logged only.
type Recorder interface {
	Begin(ctx context.Context, moduleID string) (string, error)
	End(ctx context.Context, playID, outcome string, cause error) error
}

type Options struct {
	Router   Navigator
	Registry Registry
	Content  *lifecycle.Region
	Recorder Recorder
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// OnFailure is told about module failures, e.g. to show a status line.
	OnFailure func(moduleID string, err error)
}

// running is the borrowed reference to the mounted module.
type running struct {
	module lifecycle.Module
	lease  *lifecycle.Lease
	playID string
}

type Shell struct {
	router    Navigator
	registry  Registry
	content   *lifecycle.Region
	recorder  Recorder
	metrics   *metrics.Metrics
	log       *zap.Logger
	onFailure func(string, error)

	mu          sync.Mutex
	current     *running
	backVisible bool

	pendingMu sync.Mutex
	pending   *route.Route
	wake      chan struct{}
}

func New(opts Options) (*Shell, error) {
	if opts.Content == nil {
		return nil, ErrNoContent
	}
	if opts.Router == nil {
		return nil, ErrNoRouter
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("shell: no registry")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		router:    opts.Router,
		registry:  opts.Registry,
		content:   opts.Content,
		recorder:  opts.Recorder,
		metrics:   opts.Metrics,
		log:       log.Named("shell"),
		onFailure: opts.OnFailure,
		wake:      make(chan struct{}, 1),
	}, nil
}

// BackVisible reports whether the return-to-catalog affordance is shown.
func (s *Shell) BackVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backVisible
}

// Running returns the id of the mounted module, if any.
func (s *Shell) Running() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.module.ID(), true
}

func (s *Shell) setBackVisible(v bool) {
	s.mu.Lock()
	s.backVisible = v
	s.mu.Unlock()
	s.content.Invalidate()
}

// HandleRouteChange reconciles the mounted module with the router. It must
// not run concurrently with itself; Dispatch and Run provide that ordering.
//
// Notifications from different goroutines can arrive out of order, so when
// r is no longer the router's route the current one is handled instead.
func (s *Shell) HandleRouteChange(ctx context.Context, r route.Route) {
	if now := s.router.State(); now != r {
		s.log.Debug("route moved on", zap.Stringer("route", r), zap.Stringer("now", now))
		r = now
	}
	if r.IsCatalog() {
		s.setBackVisible(false)
		s.safeUnmount(ctx)
		return
	}

	lease, ok := s.router.Grant(r.ID)
	if !ok {
		// A newer navigation took the region; its own notification follows.
		s.log.Debug("route superseded before mount", zap.Stringer("route", r))
		return
	}
	s.setBackVisible(true)

	s.mu.Lock()
	already := s.current != nil && s.current.lease == lease
	s.mu.Unlock()
	if already {
		return
	}
	s.safeUnmount(ctx)
	if !lease.Active() {
		s.log.Debug("route superseded during unmount", zap.Stringer("route", r))
		return
	}

	desc, ok := s.registry.Find(r.ID)
	if !ok {
		s.log.Warn("route names an unregistered module", zap.String("module", r.ID))
		s.setBackVisible(false)
		s.router.Release(lease)
		return
	}

	mod := desc.Module
	cur := &running{module: mod, lease: lease, playID: s.begin(ctx, mod.ID())}
	s.mu.Lock()
	s.current = cur
	s.mu.Unlock()

	started := time.Now()
	err := guard(func() error { return mod.Mount(ctx, lease) })
	s.metrics.Mount(mod.ID(), time.Since(started), err)
	if err == nil {
		s.log.Info("module mounted", zap.String("module", mod.ID()), zap.Duration("took", time.Since(started)))
		return
	}

	s.log.Error("module failed to mount", zap.String("module", mod.ID()), zap.Error(err))
	if s.onFailure != nil {
		s.onFailure(mod.ID(), err)
	}
	s.mu.Lock()
	playID := cur.playID
	cur.playID = ""
	s.mu.Unlock()
	s.end(ctx, playID, OutcomeFailed, err)
	s.safeUnmount(ctx)
	s.setBackVisible(false)
	if !s.router.Release(lease) {
		s.log.Debug("user navigated away during the failed mount", zap.String("module", mod.ID()))
	}
}

// safeUnmount tears down the running module, if any. The reference is
// dropped before Unmount is awaited so no other path can unmount it twice.
func (s *Shell) safeUnmount(ctx context.Context) {
	s.mu.Lock()
	cur := s.current
	s.current = nil
	var playID string
	if cur != nil {
		playID = cur.playID
	}
	s.mu.Unlock()
	if cur == nil {
		return
	}

	id := cur.module.ID()
	err := guard(func() error { return cur.module.Unmount(ctx) })
	s.metrics.Unmount(id, err)
	if err != nil {
		s.log.Error("module failed to unmount", zap.String("module", id), zap.Error(err))
	} else {
		s.log.Info("module unmounted", zap.String("module", id))
	}
	cur.lease.Clear()
	s.end(ctx, playID, OutcomeFinished, err)
}

// Pause forwards to the running module when it supports pausing.
func (s *Shell) Pause() {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return
	}
	if p, ok := cur.module.(lifecycle.Pauser); ok {
		p.Pause()
	}
}

func (s *Shell) Resume() {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return
	}
	if p, ok := cur.module.(lifecycle.Resumer); ok {
		p.Resume()
	}
}

func (s *Shell) begin(ctx context.Context, moduleID string) string {
	if s.recorder == nil {
		return ""
	}
	id, err := s.recorder.Begin(ctx, moduleID)
	if err != nil {
		s.log.Warn("record play start", zap.String("module", moduleID), zap.Error(err))
		return ""
	}
	return id
}

func (s *Shell) end(ctx context.Context, playID, outcome string, cause error) {
	if s.recorder == nil || playID == "" {
		return
	}
	if err := s.recorder.End(ctx, playID, outcome, cause); err != nil {
		s.log.Warn("record play end", zap.String("play", playID), zap.Error(err))
	}
}

// guard turns a panic inside a module into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("module panic: %v", r)
		}
	}()
	return fn()
}
