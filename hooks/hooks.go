// Package hooks dispatches lifecycle callbacks around document mutations. The
// dispatcher adds no control logic of its own: hooks run in registration
// order and the first error stops the chain and propagates.
package hooks

import "context"

// Action identifies the mutation a hook surrounds.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Hook observes or adjusts a document. Hooks may mutate the document in
// place; returning an error aborts the surrounding operation.
type Hook func(ctx context.Context, doc map[string]any) error

// Dispatcher holds pre and post hooks per action. The zero value is unusable;
// construct with New. A Dispatcher is not safe for concurrent registration;
// register during setup, dispatch freely afterwards.
type Dispatcher struct {
	before map[Action][]Hook
	after  map[Action][]Hook
}

// New returns an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		before: map[Action][]Hook{},
		after:  map[Action][]Hook{},
	}
}

// Before registers hooks to run ahead of the action.
func (d *Dispatcher) Before(action Action, hs ...Hook) *Dispatcher {
	d.before[action] = append(d.before[action], hs...)
	return d
}

// After registers hooks to run once the action completed.
func (d *Dispatcher) After(action Action, hs ...Hook) *Dispatcher {
	d.after[action] = append(d.after[action], hs...)
	return d
}

// RunBefore invokes the pre-hooks for the action in order.
func (d *Dispatcher) RunBefore(ctx context.Context, action Action, doc map[string]any) error {
	return run(ctx, d.before[action], doc)
}

// RunAfter invokes the post-hooks for the action in order.
func (d *Dispatcher) RunAfter(ctx context.Context, action Action, doc map[string]any) error {
	return run(ctx, d.after[action], doc)
}

func run(ctx context.Context, hs []Hook, doc map[string]any) error {
	for _, h := range hs {
		if h == nil {
			continue
		}
		if err := h(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
