package shell

import (
	"context"

	"go.uber.org/zap"

	"github.com/jask/bdhub/internal/route"
)

// Dispatch queues r for the worker. Only the newest pending route is kept:
// a navigation that arrives while an older one is still waiting replaces
// it, since handling the older one would be undone immediately.
func (s *Shell) Dispatch(r route.Route) {
	s.pendingMu.Lock()
	if s.pending != nil {
		s.log.Debug("route superseded", zap.Stringer("dropped", *s.pending), zap.Stringer("route", r))
	}
	s.pending = &r
	s.pendingMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush handles the pending route, if any, and reports whether it did.
func (s *Shell) Flush(ctx context.Context) bool {
	s.pendingMu.Lock()
	next := s.pending
	s.pending = nil
	s.pendingMu.Unlock()
	if next == nil {
		return false
	}
	s.HandleRouteChange(ctx, *next)
	return true
}

// Run handles dispatched routes one at a time until ctx is done, then
// unmounts whatever is still running.
func (s *Shell) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.safeUnmount(context.WithoutCancel(ctx))
			return nil
		case <-s.wake:
			for s.Flush(ctx) {
			}
		}
	}
}
