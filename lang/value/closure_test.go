package value_test

import (
	"testing"

	"github.com/roy2220/Karina/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosureIdentity(t *testing.T) {
	c := value.NewClosure("adder", 2)
	defer c.Release()

	require.True(t, c.IsClosure())
	clo := c.GetClosure()
	assert.Equal(t, "adder", clo.Name())
	assert.Equal(t, 2, clo.Arity())
	assert.Equal(t, 0, clo.NumCaptures())
	assert.Equal(t, "closure(adder/2)", c.String())
}

func TestClosureCaptures(t *testing.T) {
	captured := value.NewString("up")
	co := captured.Copy()
	defer co.Release()

	c := value.NewClosure("f", 1, captured.Move(), value.NewInt(3))
	require.Equal(t, 2, c.GetClosure().NumCaptures())
	require.Equal(t, 2, co.GetString().Owners())

	// captured slots can be read and mutated in place
	assert.Same(t, co.GetString(), c.GetClosure().Capture(0).GetString())
	*c.GetClosure().Capture(1).GetInt() = 4
	assert.Equal(t, uint64(4), *c.GetClosure().Capture(1).GetInt())

	assert.PanicsWithValue(t, "value: capture index 2 out of range (len 2)", func() {
		c.GetClosure().Capture(2)
	})

	// disposing the closure releases its captures
	c.Release()
	assert.Equal(t, 1, co.GetString().Owners())
}

func TestClosureClone(t *testing.T) {
	captured := value.NewString("env")
	co := captured.Copy()
	defer co.Release()

	c := value.NewClosure("f", 0, captured.Move())
	defer c.Release()

	cl := c.GetClosure().Clone()
	defer cl.Release()

	require.True(t, cl.IsClosure())
	assert.NotSame(t, c.GetClosure(), cl.GetClosure())
	assert.Equal(t, 1, cl.GetClosure().Owners())
	assert.Equal(t, "f", cl.GetClosure().Name())
	assert.Equal(t, 3, co.GetString().Owners())
	assert.Same(t, co.GetString(), cl.GetClosure().Capture(0).GetString())
}

func TestClosureRejectsReferenceCaptures(t *testing.T) {
	target := value.NewInt(1)
	r := value.NewReference(&target)
	assert.Panics(t, func() { value.NewClosure("f", 0, r) })
}
