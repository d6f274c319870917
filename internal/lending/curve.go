package lending

import (
	"moonlend/pkg/fixed"
)

// VenueFeeBps flat fee taken by the fixed curve venue on sells, 1%
const VenueFeeBps = 100

// PoolPrice fixed point price from raw venue reserves:
// quoteReserve * PriceScale / baseReserve. Division order matches the
// on-chain reader exactly.
func PoolPrice(quoteReserve, baseReserve uint64) (uint64, error) {
	if baseReserve == 0 || quoteReserve == 0 {
		return 0, fixed.ErrDivisionByZero
	}
	return fixed.MulDiv(quoteReserve, PriceScale, baseReserve)
}

// SellOutput expected quote output for selling sellAmount into a constant
// product curve, less the venue's flat fee.
//
//	k = quoteReserve * baseReserve
//	output = quoteReserve - k/(baseReserve + sellAmount)
func SellOutput(baseReserve, quoteReserve, sellAmount uint64) (uint64, error) {
	if baseReserve == 0 || quoteReserve == 0 {
		return 0, fixed.ErrDivisionByZero
	}

	newBase, err := fixed.Add(baseReserve, sellAmount)
	if err != nil {
		return 0, err
	}

	// quote*base/(base+sell) <= quote, so the quotient fits in 64 bits
	newQuote, err := fixed.MulDiv(quoteReserve, baseReserve, newBase)
	if err != nil {
		return 0, err
	}

	out, err := fixed.Sub(quoteReserve, newQuote)
	if err != nil {
		return 0, err
	}

	fee := out * VenueFeeBps / BpsDivisor
	return out - fee, nil
}

// MinOutput worst case output guard at the given slippage tolerance
func MinOutput(expected, slippageBps uint64) uint64 {
	if slippageBps >= BpsDivisor {
		return 0
	}
	out, err := fixed.MulDiv(expected, BpsDivisor-slippageBps, BpsDivisor)
	if err != nil {
		return 0
	}
	return out
}
