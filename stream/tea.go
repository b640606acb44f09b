package stream

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd creates a Bubble Tea command that waits for the next event on
// a bridge channel. Returns the event as a tea.Msg when received, or nil
// if the context is cancelled or the channel is closed.
func ListenCmd[E any](ctx context.Context, ch <-chan Event[E]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil // Channel closed
			}
			return event
		}
	}
}

// ContinuousListener maintains subscription state for the Bubble Tea
// update loop. It holds a bridge channel for one category and provides a
// Listen method that returns a tea.Cmd for receiving events.
type ContinuousListener[E any] struct {
	ctx context.Context
	ch  <-chan Event[E]
}

// NewContinuousListener subscribes to one category of the bridge. The
// subscription is cleaned up when the context is cancelled.
func NewContinuousListener[C comparable, E any](ctx context.Context, b *Bridge[C, E], category C) *ContinuousListener[E] {
	return &ContinuousListener[E]{
		ctx: ctx,
		ch:  b.Listen(ctx, category),
	}
}

// Listen returns a tea.Cmd that waits for the next event. Call this in
// your Update function after handling an event to keep receiving.
func (l *ContinuousListener[E]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch)
}
