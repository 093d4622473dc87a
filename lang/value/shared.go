package value

// shared is the ownership bookkeeping embedded by every heap payload. It
// counts the owners of the payload beyond the first one: a freshly allocated
// payload has a count of zero and exactly one owning Value.
type shared struct {
	extra int // owners beyond the first
}

// acquireShared records one additional owner of the payload. It never
// clones: the caller aliases the same instance.
func (s *shared) acquireShared() { s.extra++ }

// releaseShared drops one unit of ownership and reports whether the caller
// was the sole owner, in which case the payload must now be disposed.
func (s *shared) releaseShared() bool {
	if s.extra == 0 {
		return true
	}
	s.extra--
	return false
}

// Owners returns the number of Values currently owning the payload. Mutators
// use it (or Shared) to decide between mutating in place and cloning first:
// an in-place mutation of a payload with more than one owner is visible
// through every owning Value.
func (s *shared) Owners() int { return s.extra + 1 }

// Shared reports whether more than one Value owns the payload.
func (s *shared) Shared() bool { return s.extra > 0 }

// A payload is the storage half of a heap-kind value. String, Array,
// Dictionary and Closure implement it by embedding shared and providing
// their own dispose. Payloads are created by their Value factory and
// duplicated only through acquireShared or Clone, never by copying the
// struct.
type payload interface {
	acquireShared()
	releaseShared() bool

	// dispose runs the payload-specific cleanup: containers release the
	// values they own. It runs exactly once, when the sole owner releases
	// the payload.
	dispose()
}

// release drops one unit of ownership of p, disposing it when the caller was
// the sole owner. Calling it more often than p has owners is a programming
// error: the bookkeeping has no way to detect the extra release and the
// payload is disposed again.
func release(p payload) {
	if p.releaseShared() {
		p.dispose()
	}
}

// rejectReference panics when v is a reference value. Containers own their
// entries, and a reference value owns nothing: storing one would dangle as
// soon as the referent goes away, and disposing or cloning the container
// would operate on a reference, which the ownership operations forbid.
func rejectReference(v *Value) {
	if v.kind == kindReference {
		panic("value: containers cannot store reference values")
	}
}
