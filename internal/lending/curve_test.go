package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolPrice(t *testing.T) {
	p, err := PoolPrice(1_000, 500)
	require.Nil(t, err)
	assert.Equal(t, uint64(2_000_000_000), p)

	// division order matches the on-chain reader: scale first, divide last
	p, err = PoolPrice(30_000_000_000, 1_073_000_000_000_000)
	require.Nil(t, err)
	assert.Equal(t, uint64(30_000_000_000*1_000_000_000/1_073_000_000_000_000), p)

	_, err = PoolPrice(0, 500)
	assert.NotNil(t, err)
	_, err = PoolPrice(1_000, 0)
	assert.NotNil(t, err)
}

func TestSellOutput(t *testing.T) {
	// k = 1_000_000; selling 1000 doubles the base side, halving quote
	out, err := SellOutput(1_000, 1_000, 1_000)
	require.Nil(t, err)
	assert.Equal(t, uint64(495), out) // 500 less the 1% venue fee

	// selling zero yields zero
	out, err = SellOutput(1_000, 1_000, 0)
	require.Nil(t, err)
	assert.Equal(t, uint64(0), out)

	// output always below the spot value for a non-trivial sell
	base, quote := uint64(1_073_000_000_000_000), uint64(30_000_000_000)
	sell := uint64(5_000_000_000_000)
	out, err = SellOutput(base, quote, sell)
	require.Nil(t, err)
	spot, err := PoolPrice(quote, base)
	require.Nil(t, err)
	spotValue := sell / PriceScale * spot
	assert.True(t, out < quote)
	// price impact plus the venue fee keep the fill below spot value
	assert.True(t, out <= spotValue)
}

func TestMinOutput(t *testing.T) {
	assert.Equal(t, uint64(9_700), MinOutput(10_000, 300))
	assert.Equal(t, uint64(8_500), MinOutput(10_000, 1_500))
	assert.Equal(t, uint64(0), MinOutput(10_000, BpsDivisor))
	assert.True(t, MinOutput(10_000, 300) > MinOutput(10_000, 500))
}
