package regstats

import "math"

// Tier is the ordinal concern level assigned to a flagged record.
// Every level except normal carries the direction of the deviation.
type Tier string

const (
	TierCriticalHigh Tier = "critical_high"
	TierCriticalLow  Tier = "critical_low"
	TierModerateHigh Tier = "moderate_high"
	TierModerateLow  Tier = "moderate_low"
	TierMarginalHigh Tier = "marginal_high"
	TierMarginalLow  Tier = "marginal_low"
	TierNormal       Tier = "normal"
)

// Direction selects which side of the mean a check is sensitive to.
type Direction int

const (
	DirectionHigh Direction = iota
	DirectionLow
)

// TierBounds holds the deviation magnitudes at which each tier starts.
// Band edges are inclusive: a deviation of exactly Critical is critical.
type TierBounds struct {
	Critical float64
	Moderate float64
	Marginal float64
}

// DefaultTierBounds are the boundaries the dashboard thresholds are tuned
// against.
var DefaultTierBounds = TierBounds{Critical: 1.5, Moderate: 1.0, Marginal: 0.5}

// AssignTier maps an observed value against its course baseline to a concern
// tier. Degenerate statistics (NaN inputs, zero or negative sd) resolve to
// normal rather than an error; deviations on the wrong side of the mean for
// the requested direction are also normal.
func AssignTier(actual, mean, sd float64, dir Direction, b TierBounds) Tier {
	if math.IsNaN(actual) || math.IsNaN(mean) || math.IsNaN(sd) || sd <= 0 {
		return TierNormal
	}

	deviation := (actual - mean) / sd

	switch dir {
	case DirectionHigh:
		switch {
		case deviation >= b.Critical:
			return TierCriticalHigh
		case deviation >= b.Moderate:
			return TierModerateHigh
		case deviation >= b.Marginal:
			return TierMarginalHigh
		}
	case DirectionLow:
		switch {
		case deviation <= -b.Critical:
			return TierCriticalLow
		case deviation <= -b.Moderate:
			return TierModerateLow
		case deviation <= -b.Marginal:
			return TierMarginalLow
		}
	}
	return TierNormal
}

// AssignTiers applies AssignTier element-wise over equal-length slices.
func AssignTiers(actual, mean, sd []float64, dir Direction, b TierBounds) []Tier {
	tiers := make([]Tier, len(actual))
	for i := range actual {
		tiers[i] = AssignTier(actual[i], mean[i], sd[i], dir, b)
	}
	return tiers
}
