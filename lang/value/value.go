// Package value implements the dynamic value representation of the Karina
// runtime: a single polymorphic cell (Value) holding either null, an inline
// scalar, an owning handle to one of four reference-counted heap payloads
// (String, Array, Dictionary, Closure), or a non-owning reference to another
// Value.
//
// # Ownership
//
// A heap-kind Value owns one unit of shared ownership of its payload.
// Duplicating and dropping that ownership is explicit: Copy shares the
// payload and bumps its owner count, Move transfers it, Release drops it,
// disposing the payload when the last owner lets go. Plain Go assignment of
// a Value copies the struct without adjusting any count and must only be
// used to move a value into storage that takes over the same unit of
// ownership (what the container types do internally).
//
// Payloads are shared, not immutable: mutating one is visible through every
// owner. The package exposes the owner count (Owners, Shared) and structural
// duplication (Clone) so that callers can implement copy-on-write; it never
// clones behind the caller's back.
//
// # References
//
// A reference value aliases another Value without owning anything. It is a
// transient device for the evaluator (argument passing, captured slots) and
// obeys three rules, enforced by panics: it never points at another
// reference, it is never the source of Copy, Move or assignment, and it is
// resolved with Deref before any type query or getter.
package value

import (
	"fmt"
	"strconv"
)

// kind discriminates the members of the Value union.
type kind uint8

const (
	kindNull kind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindArray
	kindDictionary
	kindClosure
	kindReference
)

var kindNames = [...]string{
	kindNull:       "null",
	kindBool:       "bool",
	kindInt:        "int",
	kindFloat:      "float",
	kindString:     "string",
	kindArray:      "array",
	kindDictionary: "dictionary",
	kindClosure:    "closure",
	kindReference:  "reference",
}

func (k kind) String() string { return kindNames[k] }

// A Value is the polymorphic cell manipulated by the runtime. Exactly one
// member is active at a time; the zero value is null and ready to use.
//
// Values are duplicated with Copy or Move and dropped with Release, exactly
// once per owning instance. See the package documentation for the ownership
// rules.
type Value struct {
	kind kind

	boolean bool
	integer uint64
	float   float64

	str  *String
	arr  *Array
	dict *Dictionary
	clo  *Closure

	ref *Value // aliased value, never itself a reference
}

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: kindBool, boolean: b} }

// NewInt returns an integer value. Integers are unsigned 64-bit magnitudes;
// interpreting a sign is the evaluator's business.
func NewInt(i uint64) Value { return Value{kind: kindInt, integer: i} }

// NewFloat returns a floating-point value.
func NewFloat(f float64) Value { return Value{kind: kindFloat, float: f} }

// NewReference returns a value standing in for target without owning it.
// The caller must guarantee that target outlives the reference. Target must
// not itself be a reference: references never chain.
func NewReference(target *Value) Value {
	if target == nil {
		panic("value: reference to nil")
	}
	if target.kind == kindReference {
		panic("value: reference to a reference value")
	}
	return Value{kind: kindReference, ref: target}
}

// The payload constructors wrap an existing owning pointer; they are used by
// the factories, Copy and Clone and stay out of the public surface.

func makeString(s *String) Value         { return Value{kind: kindString, str: s} }
func makeArray(a *Array) Value           { return Value{kind: kindArray, arr: a} }
func makeDictionary(d *Dictionary) Value { return Value{kind: kindDictionary, dict: d} }
func makeClosure(c *Closure) Value       { return Value{kind: kindClosure, clo: c} }

// Copy returns a new owning duplicate of v. Scalars are duplicated; heap
// kinds alias the same payload with its owner count bumped, so the duplicate
// observes every later in-place mutation of the payload until one owner
// clones it. Copying a reference value is a programming error.
func (v *Value) Copy() Value {
	switch v.kind {
	case kindNull, kindBool, kindInt, kindFloat:
		return *v
	case kindString:
		v.str.acquireShared()
	case kindArray:
		v.arr.acquireShared()
	case kindDictionary:
		v.dict.acquireShared()
	case kindClosure:
		v.clo.acquireShared()
	case kindReference:
		panic("value: copy of a reference value")
	default:
		panic(fmt.Sprintf("value: invalid kind %d", v.kind))
	}
	return *v
}

// Move transfers v's member into the returned value. Heap kinds hand over
// their payload pointer and leave v null; scalars are duplicated and v is
// left untouched. Moving a reference value is a programming error.
func (v *Value) Move() Value {
	switch v.kind {
	case kindNull, kindBool, kindInt, kindFloat:
		return *v
	case kindString, kindArray, kindDictionary, kindClosure:
		moved := *v
		*v = Value{}
		return moved
	case kindReference:
		panic("value: move of a reference value")
	default:
		panic(fmt.Sprintf("value: invalid kind %d", v.kind))
	}
}

// Release drops v's unit of ownership, disposing the payload if v was its
// sole owner, and leaves v null. Null, scalar and reference values hold no
// ownership and only get reset. Every owning Value must be released exactly
// once; extra releases dispose a payload that other code may still own.
func (v *Value) Release() {
	switch v.kind {
	case kindString:
		release(v.str)
	case kindArray:
		release(v.arr)
	case kindDictionary:
		release(v.dict)
	case kindClosure:
		release(v.clo)
	}
	*v = Value{}
}

// Assign replaces v's member with a copy of *other, releasing v's previous
// payload first. Assigning a value to itself is a no-op. Neither side may be
// a reference value; assign through Deref instead.
func (v *Value) Assign(other *Value) {
	if v.kind == kindReference || other.kind == kindReference {
		panic("value: assignment involving a reference value")
	}
	if v == other {
		return
	}
	v.Release()
	*v = other.Copy()
}

// AssignMove replaces v's member with *other's, releasing v's previous
// payload first and leaving other null when it held a heap kind. The same
// reference and self-assignment rules as Assign apply.
func (v *Value) AssignMove(other *Value) {
	if v.kind == kindReference || other.kind == kindReference {
		panic("value: assignment involving a reference value")
	}
	if v == other {
		return
	}
	v.Release()
	*v = other.Move()
}

// Deref resolves a reference value to the Value it aliases and returns every
// other value as itself. The result is never a reference, so one application
// suffices. Type queries and getters must only be called on a dereferenced
// value.
func (v *Value) Deref() *Value {
	if v.kind == kindReference {
		if v.ref.kind == kindReference {
			panic("value: chained reference")
		}
		return v.ref
	}
	return v
}

// checkNotReference guards the type queries and getters: using a reference
// value without resolving it first is a programming error.
func (v *Value) checkNotReference() {
	if v.kind == kindReference {
		panic("value: reference value used without Deref")
	}
}

func (v *Value) is(k kind) bool {
	v.checkNotReference()
	return v.kind == k
}

// IsNull reports whether v is null. Like all type queries it panics on a
// reference value.
func (v *Value) IsNull() bool { return v.is(kindNull) }

// IsBool reports whether v is a boolean.
func (v *Value) IsBool() bool { return v.is(kindBool) }

// IsInt reports whether v is an integer.
func (v *Value) IsInt() bool { return v.is(kindInt) }

// IsFloat reports whether v is a floating-point number.
func (v *Value) IsFloat() bool { return v.is(kindFloat) }

// IsString reports whether v is a string.
func (v *Value) IsString() bool { return v.is(kindString) }

// IsArray reports whether v is an array.
func (v *Value) IsArray() bool { return v.is(kindArray) }

// IsDictionary reports whether v is a dictionary.
func (v *Value) IsDictionary() bool { return v.is(kindDictionary) }

// IsClosure reports whether v is a closure.
func (v *Value) IsClosure() bool { return v.is(kindClosure) }

// mustBe panics unless v's active member is k. Calling a getter on the
// wrong kind, or on a reference value, is a programming error, not a
// recoverable condition: callers type-query first.
func (v *Value) mustBe(k kind) {
	v.checkNotReference()
	if v.kind != k {
		panic(fmt.Sprintf("value: %s value accessed as %s", v.kind, k))
	}
}

// GetBool returns a pointer to the boolean member, for reading and in-place
// mutation. v must be a boolean.
func (v *Value) GetBool() *bool {
	v.mustBe(kindBool)
	return &v.boolean
}

// GetInt returns a pointer to the integer member. v must be an integer.
func (v *Value) GetInt() *uint64 {
	v.mustBe(kindInt)
	return &v.integer
}

// GetFloat returns a pointer to the floating-point member. v must be a
// float.
func (v *Value) GetFloat() *float64 {
	v.mustBe(kindFloat)
	return &v.float
}

// GetString returns the owned string payload. Mutations of the payload are
// visible through every owner; callers follow the copy-on-write discipline
// (check Shared, Clone before mutating). v must be a string.
func (v *Value) GetString() *String {
	v.mustBe(kindString)
	return v.str
}

// GetArray returns the owned array payload. v must be an array.
func (v *Value) GetArray() *Array {
	v.mustBe(kindArray)
	return v.arr
}

// GetDictionary returns the owned dictionary payload. v must be a
// dictionary.
func (v *Value) GetDictionary() *Dictionary {
	v.mustBe(kindDictionary)
	return v.dict
}

// GetClosure returns the owned closure payload. v must be a closure.
func (v *Value) GetClosure() *Closure {
	v.mustBe(kindClosure)
	return v.clo
}

// Type returns the name of v's active member: "null", "bool", "int",
// "float", "string", "array", "dictionary" or "closure". Like the type
// predicates it panics on a reference value.
func (v *Value) Type() string {
	v.checkNotReference()
	return v.kind.String()
}

// Truth reports the truth of v: null and false are false, every other value
// is true. It panics on a reference value.
func (v *Value) Truth() bool {
	v.checkNotReference()
	switch v.kind {
	case kindNull:
		return false
	case kindBool:
		return v.boolean
	default:
		return true
	}
}

// String returns a debug representation of v. Unlike the typed getters it
// is total: any kind formats, references as '&' followed by the referent.
// Dictionary entries render in a deterministic order.
func (v Value) String() string {
	switch v.kind {
	case kindNull:
		return "null"
	case kindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case kindInt:
		return strconv.FormatUint(v.integer, 10)
	case kindFloat:
		return fmt.Sprintf("%g", v.float)
	case kindString:
		return v.str.String()
	case kindArray:
		return v.arr.String()
	case kindDictionary:
		return v.dict.String()
	case kindClosure:
		return v.clo.String()
	case kindReference:
		return "&" + v.ref.String()
	default:
		return fmt.Sprintf("invalid(%d)", v.kind)
	}
}
