package swap

import (
	cosmath "cosmossdk.io/math"
)

const (
	// PriceScale is the fixed-point scale of a position price: quote units
	// per whole base unit, times 1e9.
	PriceScale = 1_000_000_000

	// BonusScale is the denominator of a scaled bonus percentage
	// (100 * 1e9 == 100%).
	BonusScale = 100_000_000_000

	// maxDecimals bounds the decimal precision accepted for either mint.
	maxDecimals = 38
)

// QuoteToBase converts a quote amount (smallest units) into the base amount
// owed (smallest units) at a 1e9-scaled price:
//
//	baseOut = floor(quoteIn * 10^baseDecimals * 1e9 / (priceScaled * 10^quoteDecimals))
//
// All multiplication happens before the single truncating division, so the
// maker never under-delivers and the taker never over-receives. A zero
// result or a result outside the u64 range is an error, never a silent
// no-op or a wrap.
func QuoteToBase(quoteIn, priceScaled uint64, baseDecimals, quoteDecimals uint8) (uint64, error) {
	if priceScaled == 0 {
		return 0, ErrInvalidParameters
	}
	if baseDecimals > maxDecimals || quoteDecimals > maxDecimals {
		return 0, ErrInvalidParameters
	}

	num := cosmath.NewIntFromUint64(quoteIn).
		Mul(cosmath.NewIntWithDecimal(1, int(baseDecimals))).
		Mul(cosmath.NewInt(PriceScale))
	den := cosmath.NewIntFromUint64(priceScaled).
		Mul(cosmath.NewIntWithDecimal(1, int(quoteDecimals)))

	out := num.Quo(den)
	if out.IsZero() {
		return 0, ErrInvalidParameters
	}
	if !out.IsUint64() {
		return 0, ErrInvalidParameters
	}
	return out.Uint64(), nil
}

// ApplyBonus computes the referral bonus for an amount at a 1e9-scaled
// percentage (100e9 == 100%):
//
//	bonus = floor(amount * percentageScaled / 100e9)
//
// A zero percentage short-circuits to zero. A result outside the u64 range
// is an error, never a clamp.
func ApplyBonus(percentageScaled, amount uint64) (uint64, error) {
	if percentageScaled == 0 {
		return 0, nil
	}

	out := cosmath.NewIntFromUint64(amount).
		Mul(cosmath.NewIntFromUint64(percentageScaled)).
		Quo(cosmath.NewInt(BonusScale))
	if !out.IsUint64() {
		return 0, ErrInvalidParameters
	}
	return out.Uint64(), nil
}
