// Package lifecycle defines the contract between the hub shell and the
// mini-games it hosts, and the shared content region they render into.
//
// Allowed here:
// - the Module, View and Container contracts
// - the concrete content Region
//
// Not allowed here:
// - routing decisions or registry lookups
// - any particular game's rendering
package lifecycle

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrAlreadyMounted is returned by Mount when the module is still mounted.
var ErrAlreadyMounted = errors.New("lifecycle: module already mounted")

// View renders into the content region and receives the messages routed to it.
type View interface {
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}

// Container is the capability a module receives on Mount.
type Container interface {
	// Replace makes v the exclusive renderer of the region.
	Replace(v View)
	// Clear empties the region.
	Clear()
	// Invalidate asks the host to redraw. Safe to call from any goroutine.
	Invalidate()
}

// Module is a mini-game hosted by the shell.
//
// Between a successful Mount and the matching Unmount the module is the
// only renderer of the container. Unmount must release everything Mount
// acquired, leave the container clear, tolerate a partially failed Mount
// and do nothing when the module was never mounted.
type Module interface {
	ID() string
	Name() string
	Mount(ctx context.Context, c Container) error
	Unmount(ctx context.Context) error
}

// Pauser is implemented by modules that can suspend their timers.
type Pauser interface {
	Pause()
}

// Resumer is implemented by modules that can continue after Pause.
type Resumer interface {
	Resume()
}

// InputCapturer is implemented by views that are currently reading free
// text, so the host must not treat plain keys as global shortcuts.
type InputCapturer interface {
	CapturingInput() bool
}
