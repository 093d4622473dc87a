package value

import "fmt"

// A Closure is the payload of a closure value: the identity of a function
// (name and arity) together with the values captured from its defining
// environment. The closure owns its captured slots and releases them when it
// is disposed. What the closure executes is the evaluator's business; this
// package only carries its identity and environment.
type Closure struct {
	shared
	name     string
	arity    int
	captures []Value
}

var _ payload = (*Closure)(nil)

// NewClosure returns a closure value for the function name/arity, owning
// the given captured values. Ownership of each capture transfers to the
// closure; reference captures are rejected with a panic.
func NewClosure(name string, arity int, captures ...Value) Value {
	for i := range captures {
		rejectReference(&captures[i])
	}
	return makeClosure(&Closure{
		name:     name,
		arity:    arity,
		captures: append([]Value(nil), captures...),
	})
}

// Name returns the function name. Anonymous functions have an empty name.
func (c *Closure) Name() string { return c.name }

// Arity returns the number of parameters the function declares.
func (c *Closure) Arity() int { return c.arity }

// NumCaptures returns the number of captured slots.
func (c *Closure) NumCaptures() int { return len(c.captures) }

// Capture returns a pointer to captured slot i, for reading, in-place
// mutation and reference targets. It panics if i is out of range.
func (c *Closure) Capture(i int) *Value {
	if i < 0 || i >= len(c.captures) {
		panic(fmt.Sprintf("value: capture index %d out of range (len %d)", i, len(c.captures)))
	}
	return &c.captures[i]
}

// Clone returns a new closure value with the same identity and its own
// unshared capture storage. The captured values are copies: scalars are
// duplicated and heap captures share their payloads with the original.
func (c *Closure) Clone() Value {
	captures := make([]Value, len(c.captures))
	for i := range c.captures {
		captures[i] = c.captures[i].Copy()
	}
	return makeClosure(&Closure{name: c.name, arity: c.arity, captures: captures})
}

// String returns "closure(name/arity)".
func (c *Closure) String() string { return fmt.Sprintf("closure(%s/%d)", c.name, c.arity) }

func (c *Closure) dispose() {
	for i := range c.captures {
		c.captures[i].Release()
	}
	c.captures = nil
}
