package regstats

// Anomaly names one of the six anomaly types.
type Anomaly string

const (
	AnomalyEarlyDrops Anomaly = "early_drops"
	AnomalyLateDrops  Anomaly = "late_drops"
	AnomalyDips       Anomaly = "dips"
	AnomalyBumps      Anomaly = "bumps"
	AnomalyWaits      Anomaly = "waits"
	AnomalySqueezes   Anomaly = "squeezes"
)

// FlaggedRecord is a MetricRecord that tripped a classifier, annotated with
// its concern tier. Absolute-threshold anomalies (waits, squeezes) carry no
// tier.
type FlaggedRecord struct {
	MetricRecord
	ConcernTier Tier `json:"concern_tier,omitempty"`
}

// Classifier is one anomaly rule: a metric selector, a flagging predicate
// and, for deviation-based rules, a tier direction. The six rules differ
// only in these three pieces, so they share one Classify implementation.
type Classifier struct {
	Anomaly   Anomaly
	Tiered    bool
	Direction Direction

	// metric returns the observed value and its baseline block for the
	// metric this rule watches. Unused for untiered rules.
	metric func(r *MetricRecord) (actual float64, stats MetricStats)
	// flag decides whether the record trips this rule.
	flag func(r *MetricRecord, t ThresholdSet) bool
}

// Classify filters the annotated table down to the records that trip this
// rule, assigning concern tiers for deviation-based rules. Pure function:
// the input table is not modified.
func (c Classifier) Classify(records []MetricRecord, t ThresholdSet, b TierBounds) []FlaggedRecord {
	var flagged []FlaggedRecord
	for i := range records {
		r := &records[i]
		if !c.flag(r, t) {
			continue
		}
		f := FlaggedRecord{MetricRecord: *r}
		if c.Tiered {
			actual, stats := c.metric(r)
			f.ConcernTier = AssignTier(actual, stats.Mean, stats.SD, c.Direction, b)
		}
		flagged = append(flagged, f)
	}
	return flagged
}

// deviationAtLeast is the high-direction gate: fires only on computable
// deviations at or above the sigma multiplier. Below-normal values can never
// trip a high-direction rule.
func deviationAtLeast(s MetricStats, pctSD float64) bool {
	return s.DeviationOK && s.Deviation >= pctSD
}

// deviationAtMost is the low-direction mirror.
func deviationAtMost(s MetricStats, pctSD float64) bool {
	return s.DeviationOK && s.Deviation <= -pctSD
}

// Classifiers returns the six anomaly rules in bundle order.
func Classifiers() []Classifier {
	return []Classifier{
		{
			Anomaly:   AnomalyEarlyDrops,
			Tiered:    true,
			Direction: DirectionHigh,
			metric: func(r *MetricRecord) (float64, MetricStats) {
				return float64(r.EarlyDrops), r.EarlyDropStats
			},
			flag: func(r *MetricRecord, t ThresholdSet) bool {
				return deviationAtLeast(r.EarlyDropStats, t.PctSD) && r.EarlyDrops >= t.MinImpacted
			},
		},
		{
			Anomaly:   AnomalyLateDrops,
			Tiered:    true,
			Direction: DirectionHigh,
			metric: func(r *MetricRecord) (float64, MetricStats) {
				return float64(r.LateDrops), r.LateDropStats
			},
			flag: func(r *MetricRecord, t ThresholdSet) bool {
				return deviationAtLeast(r.LateDropStats, t.PctSD) && r.LateDrops >= t.MinImpacted
			},
		},
		{
			Anomaly:   AnomalyDips,
			Tiered:    true,
			Direction: DirectionLow,
			metric: func(r *MetricRecord) (float64, MetricStats) {
				return float64(r.Registered), r.RegisteredStats
			},
			flag: func(r *MetricRecord, t ThresholdSet) bool {
				return deviationAtMost(r.RegisteredStats, t.PctSD) &&
					r.RegisteredStats.Mean-float64(r.Registered) >= float64(t.MinImpacted)
			},
		},
		{
			Anomaly:   AnomalyBumps,
			Tiered:    true,
			Direction: DirectionHigh,
			metric: func(r *MetricRecord) (float64, MetricStats) {
				return float64(r.Registered), r.RegisteredStats
			},
			flag: func(r *MetricRecord, t ThresholdSet) bool {
				return deviationAtLeast(r.RegisteredStats, t.PctSD) &&
					float64(r.Registered)-r.RegisteredStats.Mean >= float64(t.MinImpacted)
			},
		},
		{
			// Waitlist size is an absolute signal, not a deviation.
			Anomaly: AnomalyWaits,
			flag: func(r *MetricRecord, t ThresholdSet) bool {
				return r.Waiting >= t.MinWait
			},
		},
		{
			Anomaly: AnomalySqueezes,
			flag: func(r *MetricRecord, t ThresholdSet) bool {
				return r.SqueezeOK && r.Squeeze < t.MinSqueeze
			},
		},
	}
}
