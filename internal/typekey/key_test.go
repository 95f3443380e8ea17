package typekey

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type alpha struct{ _ int }

type beta struct{ _ int }

type shaped interface{ Sides() int }

func TestFromType_DeterministicWithinProcess(t *testing.T) {
	first, err := FromType(reflect.TypeOf(alpha{}))
	require.NoError(t, err)

	for range 100 {
		again, err := FromType(reflect.TypeOf(alpha{}))
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestFromType_DistinctTypesDistinctKeys(t *testing.T) {
	a, err := FromType(reflect.TypeOf(alpha{}))
	require.NoError(t, err)
	b, err := FromType(reflect.TypeOf(beta{}))
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestFromType_PointerSharesIdentityWithElem(t *testing.T) {
	byValue, err := FromType(reflect.TypeOf(alpha{}))
	require.NoError(t, err)
	byPointer, err := FromType(reflect.TypeOf(&alpha{}))
	require.NoError(t, err)

	require.Equal(t, byValue, byPointer)
}

func TestFromType_NilType(t *testing.T) {
	_, err := FromType(nil)
	require.ErrorIs(t, err, ErrNilType)
}

func TestOf_MatchesFromType(t *testing.T) {
	k, err := FromType(reflect.TypeOf(alpha{}))
	require.NoError(t, err)
	require.Equal(t, k, Of[alpha]())
}

func TestOf_InterfaceType(t *testing.T) {
	// Interface keys are valid anchors for ancestor entries.
	k := Of[shaped]()
	require.NotZero(t, k)
	require.NotEqual(t, Of[alpha](), k)
}

func TestFromValue(t *testing.T) {
	k, err := FromValue(&beta{})
	require.NoError(t, err)
	require.Equal(t, Of[beta](), k)

	_, err = FromValue(nil)
	require.ErrorIs(t, err, ErrNilType)
}
