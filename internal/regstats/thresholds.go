package regstats

// ThresholdSet holds the flagging gates for all six anomaly rules. These are
// operator tuning knobs: values are taken as given, not validated.
type ThresholdSet struct {
	// MinImpacted is the minimum absolute student count before a
	// deviation-based flag matters.
	MinImpacted int `json:"min_impacted" yaml:"min_impacted"`
	// PctSD is the sigma multiplier a deviation must reach to flag. It is
	// the flagging gate, distinct from the tier band boundaries.
	PctSD float64 `json:"pct_sd" yaml:"pct_sd"`
	// MinWait is the waitlist size at which a wait anomaly fires.
	MinWait int `json:"min_wait" yaml:"min_wait"`
	// MinSqueeze is the squeeze ratio below which a course is squeezed.
	MinSqueeze float64 `json:"min_squeeze" yaml:"min_squeeze"`
}

// DefaultThresholds returns the process-wide default gates.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		MinImpacted: 5,
		PctSD:       1.0,
		MinWait:     5,
		MinSqueeze:  1.0,
	}
}

// ThresholdOverride is a partial override of a ThresholdSet; nil fields keep
// the base value. Any override at all forces the cache to be bypassed.
type ThresholdOverride struct {
	MinImpacted *int     `json:"min_impacted,omitempty"`
	PctSD       *float64 `json:"pct_sd,omitempty"`
	MinWait     *int     `json:"min_wait,omitempty"`
	MinSqueeze  *float64 `json:"min_squeeze,omitempty"`
}

// Apply merges the override onto a base set and returns the result.
func (o *ThresholdOverride) Apply(base ThresholdSet) ThresholdSet {
	if o == nil {
		return base
	}
	if o.MinImpacted != nil {
		base.MinImpacted = *o.MinImpacted
	}
	if o.PctSD != nil {
		base.PctSD = *o.PctSD
	}
	if o.MinWait != nil {
		base.MinWait = *o.MinWait
	}
	if o.MinSqueeze != nil {
		base.MinSqueeze = *o.MinSqueeze
	}
	return base
}
