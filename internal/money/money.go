// Package money holds the integer arithmetic shared by every component that
// derives a monetary figure. All amounts are int64 minor units (cents);
// rates are basis points. Rounding is half-up and happens exactly once per
// derived field, never on intermediate sums.
package money

// ApplyBasisPoints returns amount × (bps / 10000), rounded half-up.
// Used for tax and service charge.
func ApplyBasisPoints(amount int64, bps int64) int64 {
	return roundHalfUpDiv(amount*bps, 10000)
}

// Percent returns amount × (pct / 100), rounded half-up. Used for
// percentage discounts, where pct is a whole percentage like 50.
func Percent(amount int64, pct int64) int64 {
	return roundHalfUpDiv(amount*pct, 100)
}

func roundHalfUpDiv(numerator, denominator int64) int64 {
	if numerator < 0 {
		return -roundHalfUpDiv(-numerator, denominator)
	}
	return (numerator + denominator/2) / denominator
}
