package value_test

import (
	"testing"

	"github.com/roy2220/Karina/lang/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsNull(t *testing.T) {
	var v value.Value
	assert.True(t, v.IsNull())
	assert.False(t, v.Truth())
	assert.Equal(t, "null", v.Type())
	assert.Equal(t, "null", v.String())
}

func TestScalars(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		v := value.NewBool(true)
		require.True(t, v.IsBool())
		assert.True(t, *v.GetBool())
		*v.GetBool() = false
		assert.False(t, v.Truth())
	})
	t.Run("int", func(t *testing.T) {
		v := value.NewInt(42)
		require.True(t, v.IsInt())
		assert.Equal(t, uint64(42), *v.GetInt())
		assert.PanicsWithValue(t, "value: int value accessed as string", func() {
			v.GetString()
		})
	})
	t.Run("float", func(t *testing.T) {
		v := value.NewFloat(1.5)
		require.True(t, v.IsFloat())
		assert.Equal(t, 1.5, *v.GetFloat())
		assert.PanicsWithValue(t, "value: float value accessed as int", func() {
			v.GetInt()
		})
	})
}

func TestScalarCopyIsIndependent(t *testing.T) {
	v := value.NewInt(42)
	c := v.Copy()
	*c.GetInt() = 7
	assert.Equal(t, uint64(42), *v.GetInt())
	assert.Equal(t, uint64(7), *c.GetInt())
}

func TestScalarMoveLeavesSource(t *testing.T) {
	v := value.NewInt(7)
	m := v.Move()
	require.True(t, v.IsInt())
	assert.Equal(t, uint64(7), *v.GetInt())
	*m.GetInt() = 8
	assert.Equal(t, uint64(7), *v.GetInt())
}

func TestNullCopyAndMove(t *testing.T) {
	var v value.Value
	c := v.Copy()
	assert.True(t, c.IsNull())
	m := v.Move()
	assert.True(t, m.IsNull())
	assert.True(t, v.IsNull())
}

func TestHeapCopyShares(t *testing.T) {
	a := value.NewString("hel")
	b := a.Copy()

	require.True(t, b.IsString())
	require.Same(t, a.GetString(), b.GetString())
	assert.Equal(t, 2, a.GetString().Owners())
	assert.True(t, a.GetString().Shared())

	// a mutation through one owner is visible through the other
	b.GetString().Append("lo")
	assert.Equal(t, "hello", a.GetString().Text())

	b.Release()
	assert.Equal(t, 1, a.GetString().Owners())
	assert.False(t, a.GetString().Shared())
	a.Release()
	assert.True(t, a.IsNull())
	assert.True(t, b.IsNull())
}

func TestHeapMoveTransfers(t *testing.T) {
	a := value.NewString("x")
	p := a.GetString()

	m := a.Move()
	assert.True(t, a.IsNull())
	require.True(t, m.IsString())
	assert.Same(t, p, m.GetString())
	assert.Equal(t, 1, m.GetString().Owners())
	m.Release()
}

func TestReleaseResetsScalar(t *testing.T) {
	v := value.NewInt(3)
	v.Release()
	assert.True(t, v.IsNull())
}

func TestAssign(t *testing.T) {
	t.Run("scalar over scalar", func(t *testing.T) {
		x := value.NewInt(1)
		y := value.NewBool(true)
		x.Assign(&y)
		require.True(t, x.IsBool())
		assert.True(t, *x.GetBool())
		assert.True(t, y.IsBool())
	})
	t.Run("shares heap source", func(t *testing.T) {
		x := value.NewInt(1)
		y := value.NewString("s")
		x.Assign(&y)
		require.True(t, x.IsString())
		assert.Same(t, y.GetString(), x.GetString())
		assert.Equal(t, 2, y.GetString().Owners())
		x.Release()
		y.Release()
	})
	t.Run("releases previous payload", func(t *testing.T) {
		a := value.NewString("old")
		w := a.Copy()
		require.Equal(t, 2, w.GetString().Owners())

		n := value.NewInt(5)
		a.Assign(&n)
		assert.True(t, a.IsInt())
		assert.Equal(t, 1, w.GetString().Owners())
		w.Release()
	})
	t.Run("self assignment is a no-op", func(t *testing.T) {
		s := value.NewString("self")
		s.Assign(&s)
		require.True(t, s.IsString())
		assert.Equal(t, 1, s.GetString().Owners())
		assert.Equal(t, "self", s.GetString().Text())
		s.Release()
	})
}

func TestAssignMove(t *testing.T) {
	t.Run("transfers heap source", func(t *testing.T) {
		x := value.NewInt(1)
		y := value.NewString("s")
		p := y.GetString()

		x.AssignMove(&y)
		require.True(t, x.IsString())
		assert.Same(t, p, x.GetString())
		assert.Equal(t, 1, x.GetString().Owners())
		assert.True(t, y.IsNull())
		x.Release()
	})
	t.Run("self assignment is a no-op", func(t *testing.T) {
		s := value.NewString("self")
		s.AssignMove(&s)
		require.True(t, s.IsString())
		assert.Equal(t, "self", s.GetString().Text())
		s.Release()
	})
}

func TestReference(t *testing.T) {
	t.Run("deref resolves one level", func(t *testing.T) {
		target := value.NewInt(42)
		r := value.NewReference(&target)
		require.Same(t, &target, r.Deref())
		assert.Equal(t, uint64(42), *r.Deref().GetInt())
	})
	t.Run("deref of a non-reference is identity", func(t *testing.T) {
		v := value.NewInt(1)
		assert.Same(t, &v, v.Deref())
	})
	t.Run("release resets without touching the target", func(t *testing.T) {
		target := value.NewInt(42)
		r := value.NewReference(&target)
		r.Release()
		assert.True(t, r.IsNull())
		assert.Equal(t, uint64(42), *target.GetInt())
	})
	t.Run("construction validates the target", func(t *testing.T) {
		assert.PanicsWithValue(t, "value: reference to nil", func() {
			value.NewReference(nil)
		})
		target := value.NewInt(1)
		r := value.NewReference(&target)
		assert.PanicsWithValue(t, "value: reference to a reference value", func() {
			value.NewReference(&r)
		})
	})
	t.Run("chained reference panics on deref", func(t *testing.T) {
		target := value.NewInt(1)
		other := value.NewInt(2)
		r := value.NewReference(&target)
		// overwriting the referent after the fact is the only way to
		// build a chain; Deref must refuse to walk it
		target = value.NewReference(&other)
		assert.PanicsWithValue(t, "value: chained reference", func() {
			r.Deref()
		})
	})
	t.Run("string repr follows the referent", func(t *testing.T) {
		target := value.NewInt(42)
		r := value.NewReference(&target)
		assert.Equal(t, "&42", r.String())
	})
}

func TestReferenceMisusePanics(t *testing.T) {
	target := value.NewInt(42)
	r := value.NewReference(&target)
	x := value.NewInt(1)

	assert.PanicsWithValue(t, "value: reference value used without Deref", func() { r.IsInt() })
	assert.PanicsWithValue(t, "value: reference value used without Deref", func() { r.GetInt() })
	assert.PanicsWithValue(t, "value: reference value used without Deref", func() { r.Type() })
	assert.PanicsWithValue(t, "value: reference value used without Deref", func() { r.Truth() })
	assert.PanicsWithValue(t, "value: copy of a reference value", func() { r.Copy() })
	assert.PanicsWithValue(t, "value: move of a reference value", func() { r.Move() })
	assert.PanicsWithValue(t, "value: assignment involving a reference value", func() { x.Assign(&r) })
	assert.PanicsWithValue(t, "value: assignment involving a reference value", func() { r.Assign(&x) })
	assert.PanicsWithValue(t, "value: assignment involving a reference value", func() { x.AssignMove(&r) })
}

func TestTruth(t *testing.T) {
	var null value.Value
	fls := value.NewBool(false)
	tru := value.NewBool(true)
	zeroInt := value.NewInt(0)
	zeroFloat := value.NewFloat(0)
	empty := value.NewString("")
	emptyArr := value.NewArray()
	defer empty.Release()
	defer emptyArr.Release()

	tests := []struct {
		name string
		v    *value.Value
		want bool
	}{
		{"null", &null, false},
		{"false", &fls, false},
		{"true", &tru, true},
		{"zero int", &zeroInt, true},
		{"zero float", &zeroFloat, true},
		{"empty string", &empty, true},
		{"empty array", &emptyArr, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.Truth())
		})
	}
}

func TestType(t *testing.T) {
	var null value.Value
	b := value.NewBool(false)
	i := value.NewInt(0)
	f := value.NewFloat(0)
	s := value.NewString("")
	a := value.NewArray()
	d := value.NewDictionary(0)
	c := value.NewClosure("f", 0)
	defer s.Release()
	defer a.Release()
	defer d.Release()
	defer c.Release()

	assert.Equal(t, "null", null.Type())
	assert.Equal(t, "bool", b.Type())
	assert.Equal(t, "int", i.Type())
	assert.Equal(t, "float", f.Type())
	assert.Equal(t, "string", s.Type())
	assert.Equal(t, "array", a.Type())
	assert.Equal(t, "dictionary", d.Type())
	assert.Equal(t, "closure", c.Type())
}

func TestCopyThenMove(t *testing.T) {
	a := value.NewString("x")
	b := a.Copy()
	require.True(t, a.IsString())
	require.True(t, b.IsString())

	c := a.Move()
	assert.True(t, a.IsNull())
	assert.True(t, c.IsString())
	assert.Same(t, b.GetString(), c.GetString())

	b.Release()
	c.Release()
}
