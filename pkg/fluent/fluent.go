// Package fluent provides the deferred-execution chain behind the suite's
// page objects. A page method does not run its driver command immediately;
// it appends the command to a chain and returns the page, so a journey
// reads as one expression:
//
//	editor.EnterName("Push Day").AddDay("Monday").Save()
//	if err := editor.Run(ctx); err != nil { ... }
//
// Queued steps execute strictly in order when Run is called, each one
// receiving the accumulator returned by the previous step. The queue is
// cleared by Run whether it succeeds or fails, so a handle is always
// reusable afterwards.
package fluent

import (
	"context"
	"fmt"
)

// StepFunc is a single deferred operation. It receives the accumulator
// produced by the previous step (the initial target for the first step)
// and returns the accumulator for the next one.
type StepFunc[T any] func(ctx context.Context, target T) (T, error)

// step captures one queued invocation: the operation name and the closure
// with its arguments already bound. No result is computed until Run.
type step[T any] struct {
	name string
	fn   StepFunc[T]
}

// Chain is a chainable, lazily-executed pipeline over a target value.
// A Chain owns its queue exclusively; independent chains never coordinate,
// even when they wrap the same target. Chain is not safe for concurrent
// use by multiple goroutines.
type Chain[T any] struct {
	target T
	queue  []step[T]
}

// NewChain creates an idle chain whose accumulator starts at initial.
func NewChain[T any](initial T) *Chain[T] {
	return &Chain[T]{target: initial}
}

// Do appends a named step to the queue and returns the chain for further
// chaining. It never touches the target and never blocks: chaining is
// synchronous even when the underlying operation is slow.
func (c *Chain[T]) Do(name string, fn StepFunc[T]) *Chain[T] {
	c.queue = append(c.queue, step[T]{name: name, fn: fn})
	return c
}

// Len returns the number of queued, not-yet-executed steps.
func (c *Chain[T]) Len() int {
	return len(c.queue)
}

// Target returns the current accumulator without queuing anything. Before
// the first Run this is the initial value; afterwards it is the last
// settled result.
func (c *Chain[T]) Target() T {
	return c.target
}

// Run drains the queue in insertion order. Step N+1 starts only after
// step N has returned; its input is step N's returned accumulator. After
// the final step settles, Run returns the accumulator and clears the queue.
//
// If a step fails, the remaining steps are discarded, the queue is still
// cleared, and the error is returned wrapped in a *StepError naming the
// failing step. An empty queue resolves immediately with the current
// accumulator and no driver traffic.
func (c *Chain[T]) Run(ctx context.Context) (T, error) {
	pending := c.queue
	c.queue = nil

	for i, s := range pending {
		next, err := s.fn(ctx, c.target)
		if err != nil {
			return c.target, &StepError{Step: s.name, Index: i, Err: err}
		}
		c.target = next
	}
	return c.target, nil
}

// StepError reports which queued step failed during a drain. The drain
// semantics (queue cleared, remaining steps discarded) are unchanged; the
// name and index exist purely for debuggability.
type StepError struct {
	Step  string // Operation name passed to Do
	Index int    // 0-based position in the drained queue
	Err   error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (index %d) failed: %v", e.Step, e.Index, e.Err)
}

// Unwrap returns the step's underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
