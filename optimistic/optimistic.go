// Package optimistic is the single primitive behind every
// apply-then-reconcile state change: like toggles, comment and post
// creation, message sends, deletes. A mutation moves through
// Applied -> Reconciled on network success or Applied -> RolledBack on
// failure; rollback always restores the snapshot captured by the call
// site at dispatch time.
package optimistic

import "context"

// Mutation is one in-flight optimistic change. Apply runs synchronously
// and must complete the local patch before the network call starts.
// Send performs the round trip. Reconcile merges the authoritative
// response over the optimistic state; Rollback restores the pre-action
// snapshot. Reconcile and Rollback run under the same store lock
// discipline as Apply, but NOT in any serialized order across
// overlapping mutations on the same entity: the last response to land
// wins.
type Mutation[R any] struct {
	Apply     func()
	Send      func(ctx context.Context) (R, error)
	Reconcile func(R)
	Rollback  func(err error)
}

// Run executes the full lifecycle synchronously and reports how the
// mutation settled.
func Run[R any](ctx context.Context, m Mutation[R]) error {
	if m.Apply != nil {
		m.Apply()
	}
	res, err := m.Send(ctx)
	if err != nil {
		if m.Rollback != nil {
			m.Rollback(err)
		}
		return err
	}
	if m.Reconcile != nil {
		m.Reconcile(res)
	}
	return nil
}

// Go applies the local patch synchronously, then settles the mutation
// on its own goroutine. The caller sees the optimistic state as soon as
// Go returns; the channel reports the eventual settled outcome.
func Go[R any](ctx context.Context, m Mutation[R]) <-chan error {
	if m.Apply != nil {
		m.Apply()
		m.Apply = nil
	}
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, m)
	}()
	return done
}
