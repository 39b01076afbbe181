package bitvector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBitString(t *testing.T) {
	v, ones, err := FromBitString("1100101")
	require.NoError(t, err)
	assert.Equal(t, 4, ones)
	assert.Equal(t, 7, v.Len())
	assert.True(t, v.IsSet(0))
	assert.True(t, v.IsSet(1))
	assert.False(t, v.IsSet(2))
	assert.True(t, v.IsSet(6))
	assert.Equal(t, "1100101", v.BitString())
}

func TestFromBitStringInvalid(t *testing.T) {
	_, _, err := FromBitString("10x1")
	assert.Error(t, err)
}

func TestOnesAndCount(t *testing.T) {
	for _, n := range []int{0, 1, 8, 63, 64, 65, 130} {
		v := Ones(n)
		assert.Equal(t, n, v.Count(), "n=%d", n)
	}
}

func TestNotMasksTail(t *testing.T) {
	// 70 bits crosses a word boundary; the complement of all-ones must
	// be empty, not leak set bits past position n.
	a := Ones(70)
	v := New(70)
	count := v.Not(a)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, v.Count())

	z := New(70)
	count = v.Not(z)
	assert.Equal(t, 70, count)
}

func TestBulkOpsReturnPopcount(t *testing.T) {
	a, _, err := FromBitString("110011")
	require.NoError(t, err)
	b, _, err := FromBitString("101010")
	require.NoError(t, err)

	dest := New(6)
	assert.Equal(t, 2, dest.And(a, b))
	assert.Equal(t, "100010", dest.BitString())

	assert.Equal(t, 5, dest.Or(a, b))
	assert.Equal(t, "111011", dest.BitString())

	assert.Equal(t, 2, dest.AndNot(a, b))
	assert.Equal(t, "010001", dest.BitString())
}

func TestAndAliasing(t *testing.T) {
	a, _, _ := FromBitString("1111")
	b, _, _ := FromBitString("0110")
	count := a.And(a, b)
	assert.Equal(t, 2, count)
	assert.Equal(t, "0110", a.BitString())
}

func TestEqual(t *testing.T) {
	a, _, _ := FromBitString("10101")
	b, _, _ := FromBitString("10101")
	c, _, _ := FromBitString("10100")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(New(6)))
}

func TestHashStableAndDiscriminating(t *testing.T) {
	a, _, _ := FromBitString(strings.Repeat("10", 50))
	b, _, _ := FromBitString(strings.Repeat("10", 50))
	c, _, _ := FromBitString(strings.Repeat("01", 50))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestSetAndClear(t *testing.T) {
	v := New(10)
	v.Set(3, true)
	v.Set(9, true)
	assert.Equal(t, 2, v.Count())
	v.Set(3, false)
	assert.False(t, v.IsSet(3))
	v.SetAll()
	assert.Equal(t, 10, v.Count())
	v.Clear()
	assert.Equal(t, 0, v.Count())
}

func TestCopy(t *testing.T) {
	a, _, _ := FromBitString("1010")
	b := a.Copy()
	b.Set(0, false)
	assert.True(t, a.IsSet(0))
	assert.False(t, b.IsSet(0))
}
