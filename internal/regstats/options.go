package regstats

import "strings"

// OptionSet restricts a run to a slice of the data and optionally overrides
// the flagging thresholds. Empty filter fields mean "all". A non-nil
// Thresholds override always bypasses the result cache.
type OptionSet struct {
	Term       string
	College    string
	Campus     string
	Level      string
	Thresholds *ThresholdOverride
}

// CustomThresholds reports whether this run uses non-default gates.
func (o OptionSet) CustomThresholds() bool {
	return o.Thresholds != nil
}

// CacheKey derives the deterministic cache filename for this filter set:
// college, term, level and campus in fixed order, colon-joined, with absent
// filters spelled out so "all" runs and filtered runs never collide.
func (o OptionSet) CacheKey() string {
	parts := []string{
		keyPart(o.College, "all-colleges"),
		keyPart(o.Term, "all-terms"),
		keyPart(o.Level, "all-levels"),
		keyPart(o.Campus, "all-campuses"),
	}
	return strings.Join(parts, ":") + ".json"
}

func keyPart(v, empty string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return empty
	}
	v = strings.ToLower(v)
	return strings.Join(strings.Fields(v), "-")
}
