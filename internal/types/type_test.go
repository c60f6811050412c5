package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gopwat/pwatc/internal/types"
)

func TestBooleanIsScalarFalseTrue(t *testing.T) {
	b := types.Boolean()
	require.Equal(t, types.Scalar, b.Kind)
	require.Equal(t, []string{"false", "true"}, b.Enumerators)
}

func TestRecordEqualityIsFieldMapEquality(t *testing.T) {
	a := types.NewRecord(types.Fields{"x": types.IntegerType, "y": types.RealType})
	b := types.NewRecord(types.Fields{"y": types.RealType, "x": types.IntegerType})
	c := types.NewRecord(types.Fields{"x": types.IntegerType})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestScalarEqualityIsOrderSensitive(t *testing.T) {
	a := types.NewScalar([]string{"red", "green", "blue"})
	b := types.NewScalar([]string{"red", "green", "blue"})
	c := types.NewScalar([]string{"blue", "green", "red"})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestScopeShadowingAndLookup(t *testing.T) {
	outer := types.Builtins()
	require.NoError(t, outer.Put("x", types.NewVariable("x", types.IntegerType)))

	inner := types.EmptyWithOuter(outer)
	require.NoError(t, inner.Put("x", types.NewVariable("x", types.RealType)))

	id, ok := inner.Get("x")
	require.True(t, ok)
	require.Equal(t, types.RealType, id.Type)

	collapsed := inner.Collapse()
	id, ok = collapsed.Get("x")
	require.True(t, ok)
	require.Equal(t, types.IntegerType, id.Type)
}

func TestScopePutDuplicateFails(t *testing.T) {
	s := types.Builtins()
	require.NoError(t, s.Put("x", types.NewVariable("x", types.IntegerType)))
	err := s.Put("x", types.NewVariable("x", types.RealType))
	require.Error(t, err)
}

func TestScopeGetMissingFails(t *testing.T) {
	s := types.Builtins()
	_, ok := s.Get("nope")
	require.False(t, ok)
}

func TestBuiltinsSeeded(t *testing.T) {
	s := types.Builtins()
	for _, name := range []string{"char", "integer", "real", "boolean", "writeln_int", "writeln_real"} {
		_, ok := s.Get(name)
		require.True(t, ok, name)
	}
}
