package compass

import "github.com/evdnx/gocompass/types"

// Midpoint is the percentile splitting above- from below-average.
const Midpoint = 50.0

// Classify maps the latest ratio/momentum percentiles to a quadrant.
// Values exactly at Midpoint count as above.
func Classify(ratioPct, momentumPct float64) types.Quadrant {
	strong := ratioPct >= Midpoint
	rising := momentumPct >= Midpoint
	switch {
	case strong && rising:
		return types.Leading
	case strong:
		return types.Weakening
	case !rising:
		return types.Lagging
	default:
		return types.Improving
	}
}

// StrengthFor buckets a ratio percentile.
func StrengthFor(pct float64) types.StrengthLabel {
	switch {
	case pct >= 80:
		return types.VeryStrong
	case pct >= 60:
		return types.Strong
	case pct >= 40:
		return types.Neutral
	case pct >= 20:
		return types.Weak
	default:
		return types.VeryWeak
	}
}

// MomentumFor buckets a momentum percentile.
func MomentumFor(pct float64) types.MomentumLabel {
	switch {
	case pct >= 60:
		return types.Accelerating
	case pct >= 40:
		return types.Steady
	default:
		return types.Fading
	}
}
