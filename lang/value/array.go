package value

import (
	"fmt"
	"strings"
)

// An Array is the payload of an array value: a sequence of owned elements.
// The array owns every element it holds and releases them all when it is
// disposed. Elements are never reference values.
type Array struct {
	shared
	elems []Value
}

var _ payload = (*Array)(nil)

// NewArray returns an array value owning the given elements. Ownership of
// each element transfers to the array; callers that want to keep using an
// element pass a Copy. Reference elements are rejected with a panic.
func NewArray(elems ...Value) Value {
	for i := range elems {
		rejectReference(&elems[i])
	}
	return makeArray(&Array{elems: append([]Value(nil), elems...)})
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.elems) }

// Index returns a pointer to the element at position i, for reading,
// in-place mutation and reference targets. The pointer stays valid until the
// array grows or is disposed. It panics if i is out of range.
func (a *Array) Index(i int) *Value {
	a.check(i)
	return &a.elems[i]
}

// Append appends v, taking ownership of it.
func (a *Array) Append(v Value) {
	rejectReference(&v)
	a.elems = append(a.elems, v)
}

// SetIndex replaces the element at position i with v, releasing the previous
// element and taking ownership of v. It panics if i is out of range.
func (a *Array) SetIndex(i int, v Value) {
	a.check(i)
	rejectReference(&v)
	a.elems[i].Release()
	a.elems[i] = v
}

// Clone returns a new array value with its own unshared element storage. The
// elements themselves are copies: scalars are duplicated and heap elements
// share their payloads with the original.
func (a *Array) Clone() Value {
	elems := make([]Value, len(a.elems))
	for i := range a.elems {
		elems[i] = a.elems[i].Copy()
	}
	return makeArray(&Array{elems: elems})
}

// String returns the elements in order, bracketed and comma-separated.
func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := range a.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.elems[i].String())
	}
	b.WriteByte(']')
	return b.String()
}

func (a *Array) check(i int) {
	if i < 0 || i >= len(a.elems) {
		panic(fmt.Sprintf("value: array index %d out of range (len %d)", i, len(a.elems)))
	}
}

func (a *Array) dispose() {
	for i := range a.elems {
		a.elems[i].Release()
	}
	a.elems = nil
}
