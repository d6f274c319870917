package fixed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	v, err := MulDiv(1_000_000_000, 500, 1_000_000)
	require.Nil(t, err)
	assert.Equal(t, uint64(500_000), v)

	// floors
	v, err = MulDiv(7, 3, 2)
	require.Nil(t, err)
	assert.Equal(t, uint64(10), v)

	// full 128 bit intermediate
	v, err = MulDiv(math.MaxUint64, 2, 4)
	require.Nil(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), v)

	_, err = MulDiv(1, 1, 0)
	assert.Equal(t, ErrDivisionByZero, err)

	_, err = MulDiv(math.MaxUint64, math.MaxUint64, 1)
	assert.Equal(t, ErrOverflow, err)
}

func TestAddSub(t *testing.T) {
	v, err := Add(1, 2)
	require.Nil(t, err)
	assert.Equal(t, uint64(3), v)

	_, err = Add(math.MaxUint64, 1)
	assert.Equal(t, ErrOverflow, err)

	_, err = Sub(1, 2)
	assert.Equal(t, ErrOverflow, err)

	assert.Equal(t, uint64(0), SubFloor(1, 2))
	assert.Equal(t, uint64(5), SubFloor(7, 2))
}

func TestPow10(t *testing.T) {
	assert.Equal(t, uint64(1), Pow10(0))
	assert.Equal(t, uint64(1_000_000), Pow10(6))
	assert.Equal(t, uint64(1_000_000_000), Pow10(9))
}
