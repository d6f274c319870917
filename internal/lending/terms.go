// Package lending holds the fixed point formulas shared with the on-chain
// program. They are an external contract: results are compared against an
// independent on-chain computation of the same math, so everything here is
// pure, integer exact and uses the program's constants and division order.
package lending

import (
	"errors"
	"fmt"

	"moonlend/pkg/fixed"
)

const (
	// BpsDivisor basis point divisor
	BpsDivisor = 10_000
	// PriceScale fixed point price scale, lamports per whole token
	PriceScale = 1_000_000_000

	// MinLoanDuration 12 hours
	MinLoanDuration = 12 * 60 * 60
	// MaxLoanDuration 7 days
	MaxLoanDuration = 7 * 24 * 60 * 60
	// ReferenceDuration pivot for the duration LTV adjustment, 24 hours
	ReferenceDuration = 24 * 60 * 60

	// MaxDurationBonusBps max bonus, fraction of the base LTV
	MaxDurationBonusBps = 1_000
	// MaxDurationPenaltyBps max penalty, fraction of the base LTV
	MaxDurationPenaltyBps = 2_000

	// MinLtvBps effective LTV floor
	MinLtvBps = 1_000
	// MaxLtvBps effective LTV cap
	MaxLtvBps = 9_000

	// DefaultFeeBps flat protocol fee
	DefaultFeeBps = 200
)

var (
	// ErrInvalidCollateral zero collateral
	ErrInvalidCollateral = errors.New("lending: invalid collateral amount")
	// ErrInvalidDuration non-positive duration
	ErrInvalidDuration = errors.New("lending: invalid duration")
)

// Terms loan sizing result
type Terms struct {
	Principal        uint64 `json:"principal"`
	Fee              uint64 `json:"fee"`
	TotalOwed        uint64 `json:"total_owed"`
	LiquidationPrice uint64 `json:"liquidation_price"`
	EffectiveLtvBps  uint64 `json:"effective_ltv_bps"`
	LtvDelta         string `json:"ltv_delta"`
}

// ClampDuration clamp a requested duration into the allowed window
func ClampDuration(durationSeconds int64) int64 {
	if durationSeconds < MinLoanDuration {
		return MinLoanDuration
	}
	if durationSeconds > MaxLoanDuration {
		return MaxLoanDuration
	}
	return durationSeconds
}

// EffectiveLtvBps duration adjusted LTV. Durations shorter than the
// reference earn a linear bonus up to MaxDurationBonusBps of the base LTV;
// longer durations pay a linear penalty up to MaxDurationPenaltyBps of it.
// The result is clamped to [MinLtvBps, MaxLtvBps].
func EffectiveLtvBps(baseLtvBps uint64, durationSeconds int64) uint64 {
	d := uint64(ClampDuration(durationSeconds))

	eff := baseLtvBps
	switch {
	case d < ReferenceDuration:
		maxBonus := baseLtvBps * MaxDurationBonusBps / BpsDivisor
		bonus := maxBonus * (ReferenceDuration - d) / (ReferenceDuration - MinLoanDuration)
		eff = baseLtvBps + bonus
	case d > ReferenceDuration:
		maxPenalty := baseLtvBps * MaxDurationPenaltyBps / BpsDivisor
		penalty := maxPenalty * (d - ReferenceDuration) / (MaxLoanDuration - ReferenceDuration)
		if penalty >= baseLtvBps {
			eff = 0
		} else {
			eff = baseLtvBps - penalty
		}
	}

	if eff < MinLtvBps {
		return MinLtvBps
	}
	if eff > MaxLtvBps {
		return MaxLtvBps
	}
	return eff
}

// EstimateLoanTerms compute loan sizing and the liquidation threshold.
// price is PriceScale fixed point; amounts are smallest units. Pure and
// deterministic: identical inputs always produce identical outputs.
func EstimateLoanTerms(collateralAmount uint64, durationSeconds int64, price, baseLtvBps, feeBps uint64, decimals uint8) (*Terms, error) {
	if collateralAmount == 0 {
		return nil, ErrInvalidCollateral
	}
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}
	if price == 0 {
		return nil, errors.New("lending: zero price")
	}

	effLtv := EffectiveLtvBps(baseLtvBps, durationSeconds)

	unit := fixed.Pow10(decimals)
	collateralValue, err := fixed.MulDiv(collateralAmount, price, unit)
	if err != nil {
		return nil, err
	}

	principal, err := fixed.MulDiv(collateralValue, effLtv, BpsDivisor)
	if err != nil {
		return nil, err
	}

	fee, err := fixed.MulDiv(principal, feeBps, BpsDivisor)
	if err != nil {
		return nil, err
	}

	totalOwed, err := fixed.Add(principal, fee)
	if err != nil {
		return nil, err
	}

	liquidationPrice, err := LiquidationPrice(totalOwed, collateralAmount, decimals)
	if err != nil {
		return nil, err
	}

	return &Terms{
		Principal:        principal,
		Fee:              fee,
		TotalOwed:        totalOwed,
		LiquidationPrice: liquidationPrice,
		EffectiveLtvBps:  effLtv,
		LtvDelta:         ltvDelta(baseLtvBps, effLtv),
	}, nil
}

// EstimateCollateralValue collateralAmount * price / 10^decimals
func EstimateCollateralValue(collateralAmount, price uint64, decimals uint8) (uint64, error) {
	return fixed.MulDiv(collateralAmount, price, fixed.Pow10(decimals))
}

// LiquidationPrice totalOwed * 10^decimals / collateralAmount, defined as
// zero for zero collateral.
func LiquidationPrice(totalOwed, collateralAmount uint64, decimals uint8) (uint64, error) {
	if collateralAmount == 0 {
		return 0, nil
	}
	return fixed.MulDiv(totalOwed, fixed.Pow10(decimals), collateralAmount)
}

// IsLiquidatableByTime strictly past due
func IsLiquidatableByTime(now, dueAt int64) bool {
	return now > dueAt
}

// IsLiquidatableByPrice non-strict: equality counts, biased toward
// protocol solvency.
func IsLiquidatableByPrice(current, threshold uint64) bool {
	return current <= threshold
}

func ltvDelta(base, effective uint64) string {
	if effective >= base {
		return fmt.Sprintf("+%d.%02d%%", (effective-base)/100, (effective-base)%100)
	}
	return fmt.Sprintf("-%d.%02d%%", (base-effective)/100, (base-effective)%100)
}
