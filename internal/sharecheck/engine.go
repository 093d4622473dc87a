package sharecheck

import (
	"fmt"
	"math/rand"

	"github.com/roy2220/Karina/lang/value"
)

// A node is the model's view of one live payload: the owner count the value
// package should report, plus the heap payloads it owns so that releasing
// the last owner cascades the same way dispose does. Arrays and closures
// list their heap elements in children, with multiplicity; dictionaries map
// the integer key space to their elements, nil standing for a scalar entry.
type node struct {
	owners   int
	children []any
	entries  map[uint64]any
}

type engine struct {
	rng    *rand.Rand
	slots  []value.Value
	model  map[any]*node
	report Report
}

func newEngine(seed int64, slots int) *engine {
	return &engine{
		rng:   rand.New(rand.NewSource(seed)),
		slots: make([]value.Value, slots),
		model: make(map[any]*node),
	}
}

func (e *engine) reportAt(seed int64, ops int) Report {
	r := e.report
	r.Seed = seed
	r.Ops = ops
	r.Live = len(e.model)
	return r
}

// payloadID returns the payload pointer of a heap-kind value, or nil for
// null and scalars. The pointer doubles as the payload's model identity.
func payloadID(v *value.Value) any {
	switch {
	case v.IsString():
		return v.GetString()
	case v.IsArray():
		return v.GetArray()
	case v.IsDictionary():
		return v.GetDictionary()
	case v.IsClosure():
		return v.GetClosure()
	}
	return nil
}

func observedOwners(id any) int {
	switch p := id.(type) {
	case *value.String:
		return p.Owners()
	case *value.Array:
		return p.Owners()
	case *value.Dictionary:
		return p.Owners()
	case *value.Closure:
		return p.Owners()
	}
	panic(fmt.Sprintf("sharecheck: unknown payload type %T", id))
}

func (e *engine) verify() error {
	for id, n := range e.model {
		if got := observedOwners(id); got != n.owners {
			return fmt.Errorf("%T %p: model expects %d owners, value reports %d", id, id, n.owners, got)
		}
	}
	return nil
}

func (e *engine) drain() {
	for i := range e.slots {
		e.releaseSlot(i)
	}
}

// model bookkeeping

func (e *engine) modelNew(id any, children []any, entries map[uint64]any) {
	if id == nil {
		return
	}
	e.model[id] = &node{owners: 1, children: children, entries: entries}
	e.report.Constructed++
	if e.report.MaxOwners < 1 {
		e.report.MaxOwners = 1
	}
}

func (e *engine) modelAcquire(id any) {
	if id == nil {
		return
	}
	n := e.model[id]
	if n == nil {
		panic("sharecheck: acquire of untracked payload")
	}
	n.owners++
	if n.owners > e.report.MaxOwners {
		e.report.MaxOwners = n.owners
	}
}

func (e *engine) modelRelease(id any) {
	if id == nil {
		return
	}
	n := e.model[id]
	if n == nil {
		panic("sharecheck: release of untracked payload")
	}
	n.owners--
	if n.owners > 0 {
		return
	}
	delete(e.model, id)
	e.report.Disposed++
	for _, c := range n.children {
		e.modelRelease(c)
	}
	for _, c := range n.entries {
		e.modelRelease(c)
	}
}

// releaseSlot releases slot i and mirrors the release in the model.
func (e *engine) releaseSlot(i int) {
	id := payloadID(&e.slots[i])
	e.slots[i].Release()
	e.modelRelease(id)
}

// slot pickers

func (e *engine) slot() int {
	return e.rng.Intn(len(e.slots))
}

func (e *engine) otherSlot(i int) int {
	j := e.rng.Intn(len(e.slots) - 1)
	if j >= i {
		j++
	}
	return j
}

func (e *engine) slotsOf(kind string) []int {
	var idx []int
	for i := range e.slots {
		if e.slots[i].Type() == kind {
			idx = append(idx, i)
		}
	}
	return idx
}

// operations

func (e *engine) step() (string, error) {
	switch n := e.rng.Intn(16); {
	case n < 4:
		return e.opConstruct(), nil
	case n < 6:
		return e.opCopy(), nil
	case n < 8:
		return e.opMove(), nil
	case n < 10:
		return e.opAssign(), nil
	case n < 11:
		return e.opAssignMove(), nil
	case n < 13:
		return e.opRelease(), nil
	case n < 14:
		return e.opClone(), nil
	default:
		return e.opContainer()
	}
}

func (e *engine) opConstruct() string {
	i := e.slot()
	e.releaseSlot(i)

	switch e.rng.Intn(8) {
	case 0:
		return "construct null"
	case 1:
		e.slots[i] = value.NewBool(e.rng.Intn(2) == 0)
		return "construct bool"
	case 2:
		e.slots[i] = value.NewInt(uint64(e.rng.Intn(1000)))
		return "construct int"
	case 3:
		e.slots[i] = value.NewFloat(e.rng.Float64())
		return "construct float"
	case 4:
		e.slots[i] = value.NewString(fmt.Sprintf("s%d", e.rng.Intn(1000)))
		e.modelNew(payloadID(&e.slots[i]), nil, nil)
		return "construct string"
	case 5:
		e.slots[i] = value.NewArray()
		e.modelNew(payloadID(&e.slots[i]), nil, nil)
		return "construct array"
	case 6:
		e.slots[i] = value.NewDictionary(0)
		e.modelNew(payloadID(&e.slots[i]), nil, map[uint64]any{})
		return "construct dictionary"
	default:
		// captures are moved out of other slots
		var captures []value.Value
		var children []any
		for n := e.rng.Intn(3); n > 0; n-- {
			j := e.otherSlot(i)
			if id := payloadID(&e.slots[j]); id != nil {
				children = append(children, id)
			}
			captures = append(captures, e.slots[j].Move())
		}
		e.slots[i] = value.NewClosure(fmt.Sprintf("f%d", e.rng.Intn(100)), e.rng.Intn(4), captures...)
		e.modelNew(payloadID(&e.slots[i]), children, nil)
		return "construct closure"
	}
}

func (e *engine) opCopy() string {
	i := e.slot()
	j := e.otherSlot(i)
	e.releaseSlot(j)
	e.slots[j] = e.slots[i].Copy()
	e.modelAcquire(payloadID(&e.slots[i]))
	return "copy"
}

func (e *engine) opMove() string {
	i := e.slot()
	j := e.otherSlot(i)
	e.releaseSlot(j)
	e.slots[j] = e.slots[i].Move()
	return "move"
}

func (e *engine) opAssign() string {
	i := e.slot()
	j := e.slot()
	if i == j {
		e.slots[i].Assign(&e.slots[i])
		return "assign self"
	}
	oldID := payloadID(&e.slots[j])
	srcID := payloadID(&e.slots[i])
	e.slots[j].Assign(&e.slots[i])
	e.modelRelease(oldID)
	e.modelAcquire(srcID)
	return "assign"
}

func (e *engine) opAssignMove() string {
	i := e.slot()
	j := e.slot()
	if i == j {
		e.slots[i].AssignMove(&e.slots[i])
		return "assign-move self"
	}
	oldID := payloadID(&e.slots[j])
	e.slots[j].AssignMove(&e.slots[i])
	e.modelRelease(oldID)
	return "assign-move"
}

func (e *engine) opRelease() string {
	e.releaseSlot(e.slot())
	return "release"
}

func (e *engine) opClone() string {
	var heap []int
	for i := range e.slots {
		if payloadID(&e.slots[i]) != nil {
			heap = append(heap, i)
		}
	}
	if len(heap) == 0 {
		return e.opConstruct()
	}
	i := heap[e.rng.Intn(len(heap))]
	src := e.model[payloadID(&e.slots[i])]

	// Clone duplicates the payload and copies its elements, so every heap
	// element gains an owner.
	var cl value.Value
	var children []any
	var entries map[uint64]any
	switch {
	case e.slots[i].IsString():
		cl = e.slots[i].GetString().Clone()
	case e.slots[i].IsArray():
		cl = e.slots[i].GetArray().Clone()
		children = append([]any(nil), src.children...)
	case e.slots[i].IsDictionary():
		cl = e.slots[i].GetDictionary().Clone()
		entries = make(map[uint64]any, len(src.entries))
		for k, c := range src.entries {
			entries[k] = c
		}
	default:
		cl = e.slots[i].GetClosure().Clone()
		children = append([]any(nil), src.children...)
	}
	for _, c := range children {
		e.modelAcquire(c)
	}
	for _, c := range entries {
		e.modelAcquire(c)
	}
	e.modelNew(payloadID(&cl), children, entries)

	j := e.otherSlot(i)
	e.releaseSlot(j)
	e.slots[j] = cl
	return "clone"
}

func (e *engine) opContainer() (string, error) {
	arrays := e.slotsOf("array")
	dicts := e.slotsOf("dictionary")
	switch {
	case len(arrays) > 0 && (len(dicts) == 0 || e.rng.Intn(2) == 0):
		return e.opAppend(arrays), nil
	case len(dicts) > 0:
		return e.opDict(dicts)
	default:
		return e.opConstruct(), nil
	}
}

func (e *engine) opAppend(arrays []int) string {
	i := arrays[e.rng.Intn(len(arrays))]
	j := e.otherSlot(i)
	aid := payloadID(&e.slots[i])
	cid := payloadID(&e.slots[j])
	e.slots[i].GetArray().Append(e.slots[j].Move())
	if cid != nil {
		e.model[aid].children = append(e.model[aid].children, cid)
	}
	return "append"
}

// opDict puts or deletes under a small integer key space so that puts
// regularly replace existing entries.
func (e *engine) opDict(dicts []int) (string, error) {
	i := dicts[e.rng.Intn(len(dicts))]
	n := e.model[payloadID(&e.slots[i])]
	key := uint64(e.rng.Intn(8))
	k := value.NewInt(key)

	if e.rng.Intn(3) == 0 {
		old, present := n.entries[key]
		deleted := e.slots[i].GetDictionary().Delete(&k)
		if deleted != present {
			return "delete", fmt.Errorf("delete(%d): model expects %v, dictionary returned %v", key, present, deleted)
		}
		if present {
			delete(n.entries, key)
			e.modelRelease(old)
		}
		return "delete", nil
	}

	j := e.otherSlot(i)
	cid := payloadID(&e.slots[j])
	if err := e.slots[i].GetDictionary().Put(&k, e.slots[j].Move()); err != nil {
		return "put", err
	}
	if old, present := n.entries[key]; present {
		e.modelRelease(old)
	}
	n.entries[key] = cid
	return "put", nil
}
