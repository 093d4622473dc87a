package value

import "strconv"

// A String is the payload of a string value: a mutable byte buffer. All
// owners of the payload observe every mutation; a caller that wants private
// mutation clones first (see Shared and Clone).
type String struct {
	shared
	bytes []byte
}

var _ payload = (*String)(nil)

// NewString returns a string value holding the bytes of text. The payload
// starts with a single owner.
func NewString(text string) Value {
	return makeString(&String{bytes: []byte(text)})
}

// Len returns the length of the string in bytes.
func (s *String) Len() int { return len(s.bytes) }

// Text returns the current contents as a Go string.
func (s *String) Text() string { return string(s.bytes) }

// Append appends text in place.
func (s *String) Append(text string) {
	s.bytes = append(s.bytes, text...)
}

// Clone returns a new string value with its own unshared copy of the
// contents.
func (s *String) Clone() Value {
	return makeString(&String{bytes: append([]byte(nil), s.bytes...)})
}

// String returns the contents as a quoted Go string literal.
func (s *String) String() string { return strconv.Quote(string(s.bytes)) }

func (s *String) dispose() { s.bytes = nil }
