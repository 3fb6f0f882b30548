// Package optimistic implements a two-phase update: a new value is shown
// tentatively before the authoritative write happens, and is either kept
// (Confirm) or replaced by the previous value (Revert) once the write settles.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// View is the displayed copy of a value.
type View[T any] interface {
	Show(ctx context.Context, value T) error
}

type State int

const (
	Pending State = iota
	Confirmed
	Reverted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrSettled = errors.New("optimistic update already settled")

type Update[T any] struct {
	view     View[T]
	previous T
	next     T

	mu    sync.Mutex
	state State
}

// Apply shows next on the view and returns the pending update. When the view
// cannot be updated nothing is pending and the error is returned.
func Apply[T any](ctx context.Context, view View[T], previous, next T) (*Update[T], error) {
	if err := view.Show(ctx, next); err != nil {
		return nil, fmt.Errorf("tentative apply: %w", err)
	}
	return &Update[T]{view: view, previous: previous, next: next}, nil
}

func (u *Update[T]) Previous() T { return u.previous }
func (u *Update[T]) Next() T     { return u.next }

func (u *Update[T]) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Confirm keeps the tentative value.
func (u *Update[T]) Confirm() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != Pending {
		return ErrSettled
	}
	u.state = Confirmed
	return nil
}

// Revert shows the previous value again.
func (u *Update[T]) Revert(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != Pending {
		return ErrSettled
	}
	u.state = Reverted
	if err := u.view.Show(ctx, u.previous); err != nil {
		return fmt.Errorf("revert: %w", err)
	}
	return nil
}

// Do runs the whole cycle: apply next, call write, then confirm or revert.
// It returns the value left on the view.
func Do[T any](ctx context.Context, view View[T], previous, next T, write func(ctx context.Context, value T) error) (T, error) {
	update, err := Apply(ctx, view, previous, next)
	if err != nil {
		return previous, err
	}

	if werr := write(ctx, next); werr != nil {
		if rerr := update.Revert(ctx); rerr != nil {
			return previous, errors.Join(werr, rerr)
		}
		return previous, werr
	}

	if err := update.Confirm(); err != nil {
		return next, err
	}
	return next, nil
}

// Value is an in-memory View guarded by a mutex.
type Value[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

func (v *Value[T]) Show(_ context.Context, value T) error {
	v.mu.Lock()
	v.value = value
	v.mu.Unlock()
	return nil
}

func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}
