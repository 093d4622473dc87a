package value

import (
	"fmt"
	"math"
	"strings"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// A Dictionary is the payload of a dictionary value: a hash table from
// scalar or string keys to owned element values. Keys are matched by
// content, so two distinct string payloads with the same bytes address the
// same entry. Container and closure values cannot be keys.
//
// Keys are snapshotted on insertion: a later mutation of the string payload
// a key was derived from does not move the entry. Float keys are matched by
// their IEEE 754 bit pattern, so a NaN key only matches the same NaN
// representation.
type Dictionary struct {
	shared
	m *swiss.Map[dictKey, *entry]
}

var _ payload = (*Dictionary)(nil)

// A dictKey is the comparable content snapshot of a key value. Scalars live
// in bits (bools as 0/1, floats as IEEE bits), strings in str.
type dictKey struct {
	kind kind
	bits uint64
	str  string
}

// An entry boxes the element value of one dictionary slot. The box keeps
// the *Value returned by Get stable while the table grows.
type entry struct {
	val Value
}

// NewDictionary returns a dictionary value with initial capacity for at
// least size entries. The payload starts with a single owner.
func NewDictionary(size int) Value {
	if size < 0 {
		size = 0
	}
	return makeDictionary(&Dictionary{m: swiss.NewMap[dictKey, *entry](uint32(size))})
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return d.m.Count() }

// Get returns a pointer to the element stored under key, or nil and false
// when the key is absent. The key is only read; the caller keeps ownership
// of it. Keys of container or closure kind are never present. The returned
// pointer stays valid until the entry is deleted or the dictionary is
// disposed.
func (d *Dictionary) Get(key *Value) (*Value, bool) {
	k, err := deriveKey(key)
	if err != nil {
		return nil, false
	}
	e, ok := d.m.Get(k)
	if !ok {
		return nil, false
	}
	return &e.val, true
}

// Put stores val under key, releasing the element previously stored there
// if any. The key is only read. Ownership of val transfers to Put whether
// it succeeds or not: when the key kind cannot key a dictionary, Put
// releases val and returns an error. Callers that want to keep val pass a
// Copy. Reference elements are rejected with a panic.
func (d *Dictionary) Put(key *Value, val Value) error {
	rejectReference(&val)
	k, err := deriveKey(key)
	if err != nil {
		val.Release()
		return err
	}
	if e, ok := d.m.Get(k); ok {
		e.val.Release()
		e.val = val
		return nil
	}
	d.m.Put(k, &entry{val: val})
	return nil
}

// Delete removes the entry stored under key, releasing its element, and
// reports whether an entry was removed. The key is only read.
func (d *Dictionary) Delete(key *Value) bool {
	k, err := deriveKey(key)
	if err != nil {
		return false
	}
	e, ok := d.m.Get(k)
	if !ok {
		return false
	}
	e.val.Release()
	d.m.Delete(k)
	return true
}

// Range calls fn for every entry until fn returns false. The key passed to
// fn is a temporary owned by Range, valid only during the call: fn reads it
// and must not copy, move, release or retain it. The element pointer is the
// same slot pointer Get returns. The iteration order is unspecified.
func (d *Dictionary) Range(fn func(key *Value, val *Value) bool) {
	d.m.Iter(func(k dictKey, e *entry) bool {
		kv := k.value()
		stop := !fn(&kv, &e.val)
		kv.Release()
		return stop
	})
}

// Clone returns a new dictionary value with its own unshared table holding
// the same keys. The elements are copies: scalars are duplicated and heap
// elements share their payloads with the original.
func (d *Dictionary) Clone() Value {
	m := swiss.NewMap[dictKey, *entry](uint32(d.m.Count()))
	d.m.Iter(func(k dictKey, e *entry) bool {
		m.Put(k, &entry{val: e.val.Copy()})
		return false
	})
	return makeDictionary(&Dictionary{m: m})
}

// String returns the entries as "{key: value, ...}" with the entries sorted
// by their key representation, so the result is deterministic across runs.
func (d *Dictionary) String() string {
	items := make([]string, 0, d.m.Count())
	d.m.Iter(func(k dictKey, e *entry) bool {
		kv := k.value()
		items = append(items, kv.String()+": "+e.val.String())
		kv.Release()
		return false
	})
	slices.Sort(items)
	return "{" + strings.Join(items, ", ") + "}"
}

func (d *Dictionary) dispose() {
	d.m.Iter(func(k dictKey, e *entry) bool {
		e.val.Release()
		return false
	})
	d.m = nil
}

// deriveKey snapshots the content of a key value. Using a reference value
// as a key is a programming error; container and closure kinds are
// reported as an error for the caller to surface.
func deriveKey(v *Value) (dictKey, error) {
	v.checkNotReference()
	switch v.kind {
	case kindNull:
		return dictKey{kind: kindNull}, nil
	case kindBool:
		var b uint64
		if v.boolean {
			b = 1
		}
		return dictKey{kind: kindBool, bits: b}, nil
	case kindInt:
		return dictKey{kind: kindInt, bits: v.integer}, nil
	case kindFloat:
		return dictKey{kind: kindFloat, bits: math.Float64bits(v.float)}, nil
	case kindString:
		return dictKey{kind: kindString, str: v.str.Text()}, nil
	default:
		return dictKey{}, fmt.Errorf("dictionary key must be null, bool, int, float or string, not %s", v.kind)
	}
}

// value rebuilds an owning Value from a key snapshot. String keys allocate
// a fresh payload; the caller owns the result.
func (k dictKey) value() Value {
	switch k.kind {
	case kindNull:
		return Value{}
	case kindBool:
		return NewBool(k.bits != 0)
	case kindInt:
		return NewInt(k.bits)
	case kindFloat:
		return NewFloat(math.Float64frombits(k.bits))
	default:
		return NewString(k.str)
	}
}
