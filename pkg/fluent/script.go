package fluent

import (
	"context"
	"fmt"
)

// Op is a dynamically-registered operation for a Script. It receives the
// current accumulator and the arguments bound at call time.
type Op func(ctx context.Context, target interface{}, args ...interface{}) (interface{}, error)

// Script is the untyped variant of Chain for operation sets that are not
// known at compile time (e.g. steps named in a data-driven spec file).
// Operations are registered by name up front; calling an unregistered name
// panics at chain time, because that is a programming error rather than a
// runtime condition and should not be silently queued.
type Script struct {
	ops   map[string]Op
	chain *Chain[interface{}]
}

// NewScript creates an idle script whose accumulator starts at initial.
func NewScript(initial interface{}) *Script {
	return &Script{
		ops:   make(map[string]Op),
		chain: NewChain[interface{}](initial),
	}
}

// Register declares a named operation. Returns the script for chaining.
func (s *Script) Register(name string, op Op) *Script {
	s.ops[name] = op
	return s
}

// Call queues an invocation of a registered operation with the given
// arguments and returns the script for further chaining. Panics if the
// name was never registered.
func (s *Script) Call(name string, args ...interface{}) *Script {
	op, ok := s.ops[name]
	if !ok {
		panic(fmt.Sprintf("fluent: operation %q is not registered", name))
	}
	s.chain.Do(name, func(ctx context.Context, target interface{}) (interface{}, error) {
		return op(ctx, target, args...)
	})
	return s
}

// Len returns the number of queued invocations.
func (s *Script) Len() int {
	return s.chain.Len()
}

// Target returns the current accumulator without queuing anything.
func (s *Script) Target() interface{} {
	return s.chain.Target()
}

// Run drains the queued invocations with Chain semantics.
func (s *Script) Run(ctx context.Context) (interface{}, error) {
	return s.chain.Run(ctx)
}
