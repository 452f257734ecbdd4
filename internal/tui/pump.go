package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Pump coalesces redraw requests and forwards them to the program from its
// own goroutine. Regions invalidate from inside Update too, where sending to
// the program directly would block the event loop on itself.
type Pump struct {
	redraw chan struct{}
	msgs   chan tea.Msg
}

func NewPump() *Pump {
	return &Pump{
		redraw: make(chan struct{}, 1),
		msgs:   make(chan tea.Msg, 16),
	}
}

// Redraw never blocks; pending requests collapse into one.
func (p *Pump) Redraw() {
	select {
	case p.redraw <- struct{}{}:
	default:
	}
}

// Send queues msg for delivery. It drops msg when the queue is full.
func (p *Pump) Send(msg tea.Msg) bool {
	select {
	case p.msgs <- msg:
		return true
	default:
		return false
	}
}

// Run delivers queued work through send until ctx is done.
func (p *Pump) Run(ctx context.Context, send func(tea.Msg)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.redraw:
			send(RedrawMsg{})
		case msg := <-p.msgs:
			send(msg)
		}
	}
}
