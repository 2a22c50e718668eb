package regstats

import "sort"

// SummaryRow is one (anomaly type, tier) cell of the tiered summary.
type SummaryRow struct {
	Anomaly Anomaly `json:"anomaly"`
	Tier    Tier    `json:"tier"`
	Count   int     `json:"count"`
}

// TieredSummary cross-tabulates flagged counts by anomaly type and tier for
// the dashboard. Untiered anomaly types (waits, squeezes) are excluded, not
// zero-filled: callers must not assume every anomaly type appears.
type TieredSummary struct {
	Rows          []SummaryRow `json:"rows"`
	CriticalTotal int          `json:"critical_total"`
	ModerateTotal int          `json:"moderate_total"`
}

// tierOrder fixes the within-anomaly ordering of summary rows.
var tierOrder = map[Tier]int{
	TierCriticalHigh: 0,
	TierCriticalLow:  1,
	TierModerateHigh: 2,
	TierModerateLow:  3,
	TierMarginalHigh: 4,
	TierMarginalLow:  5,
	TierNormal:       6,
}

// BuildTieredSummary aggregates the tiered flagged tables into a cross-tab.
// Only combinations actually present produce rows, so per-cell counts sum
// exactly to the row counts of the flagged tables.
func BuildTieredSummary(tables map[Anomaly][]FlaggedRecord) TieredSummary {
	type cell struct {
		anomaly Anomaly
		tier    Tier
	}
	counts := make(map[cell]int)
	for anomaly, records := range tables {
		for _, r := range records {
			if r.ConcernTier == "" {
				continue
			}
			counts[cell{anomaly, r.ConcernTier}]++
		}
	}

	s := TieredSummary{}
	for c, n := range counts {
		s.Rows = append(s.Rows, SummaryRow{Anomaly: c.anomaly, Tier: c.tier, Count: n})
		switch c.tier {
		case TierCriticalHigh, TierCriticalLow:
			s.CriticalTotal += n
		case TierModerateHigh, TierModerateLow:
			s.ModerateTotal += n
		}
	}

	sort.Slice(s.Rows, func(i, j int) bool {
		a, b := s.Rows[i], s.Rows[j]
		if a.Anomaly != b.Anomaly {
			return a.Anomaly < b.Anomaly
		}
		return tierOrder[a.Tier] < tierOrder[b.Tier]
	})
	return s
}

// AllFlaggedCourses returns the sorted, deduplicated course identifiers
// across every flagged table.
func AllFlaggedCourses(tables map[Anomaly][]FlaggedRecord) []string {
	seen := make(map[string]bool)
	for _, records := range tables {
		for _, r := range records {
			seen[r.CourseID()] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
