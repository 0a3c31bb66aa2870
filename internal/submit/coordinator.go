// Package submit wraps asynchronous backend calls with a uniform lifecycle:
// idle -> submitting -> (succeeded -> idle | failed). At most one submission
// runs per Coordinator; field errors are kept apart from the generic message.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the coordinator lifecycle state.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Operation is a backend call already closed over its payload.
type Operation[T any] func(ctx context.Context) (T, error)

// Snapshot is a consistent view of the coordinator.
type Snapshot[T any] struct {
	State          State
	Data           T
	HasData        bool
	StatusCode     int
	ErrorMessage   string
	NonFieldErrors []string
	FormErrors     *FieldErrors
}

// Loading reports whether a submission is in flight.
func (s Snapshot[T]) Loading() bool {
	return s.State == Submitting
}

// Failed reports whether the last submission failed.
func (s Snapshot[T]) Failed() bool {
	return s.State == Failed
}

type options struct {
	timeout  time.Duration
	observer func(from, to State)
}

// Option configures a Coordinator.
type Option func(*options)

// WithTimeout bounds each submission. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithObserver registers a callback invoked on every state transition,
// outside the coordinator's lock.
func WithObserver(fn func(from, to State)) Option {
	return func(o *options) { o.observer = fn }
}

// Coordinator sequences submissions for one form or action.
type Coordinator[T any] struct {
	opts options

	mu         sync.Mutex
	state      State
	data       T
	hasData    bool
	statusCode int
	message    string
	nonField   []string
	formErrors *FieldErrors
	generation uint64
	cancel     context.CancelFunc
}

// New returns an idle coordinator.
func New[T any](opts ...Option) *Coordinator[T] {
	c := &Coordinator[T]{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

type transition struct{ from, to State }

// Submit runs op unless another submission is in flight, in which case it
// returns ErrBusy without invoking op. On success prior errors are cleared
// and onSuccess receives the result unmodified, exactly once. If Reset is
// called while op runs, op's context is canceled and its outcome is
// dropped with ErrDiscarded.
func (c *Coordinator[T]) Submit(ctx context.Context, op Operation[T], onSuccess func(T)) error {
	var transitions []transition

	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	transitions = append(transitions, c.moveLocked(Submitting))
	c.statusCode = 0
	c.message = ""

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if c.opts.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.opts.timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	c.cancel = cancel
	generation := c.generation
	c.mu.Unlock()
	c.notify(transitions)
	transitions = transitions[:0]

	result, err := c.run(runCtx, op, generation, cancel)
	cancel()

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return ErrDiscarded
	}
	c.cancel = nil
	if err != nil {
		c.failLocked(err)
		transitions = append(transitions, c.moveLocked(Failed))
		c.mu.Unlock()
		c.notify(transitions)
		return err
	}
	c.data = result
	c.hasData = true
	c.formErrors = nil
	c.nonField = nil
	transitions = append(transitions, c.moveLocked(Succeeded), c.moveLocked(Idle))
	c.mu.Unlock()
	c.notify(transitions)

	if onSuccess != nil {
		onSuccess(result)
	}
	return nil
}

// run invokes op. If op panics the coordinator moves to Failed before the
// panic continues, so later submissions are not refused with ErrBusy.
func (c *Coordinator[T]) run(ctx context.Context, op Operation[T], generation uint64, cancel context.CancelFunc) (T, error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cancel()
		var transitions []transition
		c.mu.Lock()
		if generation == c.generation {
			c.cancel = nil
			c.failLocked(fmt.Errorf("submission panicked: %v", r))
			transitions = append(transitions, c.moveLocked(Failed))
		}
		c.mu.Unlock()
		c.notify(transitions)
		panic(r)
	}()
	return op(ctx)
}

// Reset returns to idle with no data and no errors, canceling any
// in-flight submission.
func (c *Coordinator[T]) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	var zero T
	c.data = zero
	c.hasData = false
	c.statusCode = 0
	c.message = ""
	c.nonField = nil
	c.formErrors = nil
	t := c.moveLocked(Idle)
	c.mu.Unlock()
	c.notify([]transition{t})
}

// SetData replaces the retained data without a submission.
func (c *Coordinator[T]) SetData(data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.hasData = true
}

// State returns the current state.
func (c *Coordinator[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current state, data and errors.
func (c *Coordinator[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		State:          c.state,
		Data:           c.data,
		HasData:        c.hasData,
		StatusCode:     c.statusCode,
		ErrorMessage:   c.message,
		NonFieldErrors: append([]string(nil), c.nonField...),
		FormErrors:     c.formErrors,
	}
}

// failLocked splits err into field errors, non-field messages or a single
// generic message. Field errors suppress the generic message.
func (c *Coordinator[T]) failLocked(err error) {
	c.formErrors = nil
	c.nonField = nil
	c.message = ""
	c.statusCode = 0

	var env Envelope
	if !errors.As(err, &env) {
		c.message = err.Error()
		return
	}
	c.statusCode = env.StatusCode()
	fe := env.FormErrors()
	switch {
	case fe.Empty():
		c.message = env.UserMessage()
		if c.message == "" {
			c.message = err.Error()
		}
	case fe.IsList():
		c.nonField = append([]string(nil), fe.Messages...)
	default:
		c.formErrors = fe
		c.nonField = fe.NonField()
	}
}

func (c *Coordinator[T]) moveLocked(to State) transition {
	t := transition{from: c.state, to: to}
	c.state = to
	return t
}

func (c *Coordinator[T]) notify(transitions []transition) {
	if c.opts.observer == nil {
		return
	}
	for _, t := range transitions {
		c.opts.observer(t.from, t.to)
	}
}
