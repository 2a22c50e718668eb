package regstats

import (
	"context"
	"testing"

	"github.com/cedarstats/regstats/internal/database"
)

// fakeSource serves fixed tables and records the filters it saw.
type fakeSource struct {
	sections    []database.Section
	enrollments []database.Enrollment
	filters     []database.Filter
}

func (s *fakeSource) GetSections(f database.Filter) ([]database.Section, error) {
	s.filters = append(s.filters, f)
	return s.sections, nil
}

func (s *fakeSource) GetEnrollments(f database.Filter) ([]database.Enrollment, error) {
	return s.enrollments, nil
}

// fakeStore is a minimal CacheStore that counts traffic.
type fakeStore struct {
	entries map[string]*Bundle
	gets    int
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*Bundle)}
}

func (s *fakeStore) Get(key string) (*Bundle, bool) {
	s.gets++
	b, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	clone := *b
	return &clone, true
}

func (s *fakeStore) Put(key string, b *Bundle) error {
	s.puts++
	clone := *b
	s.entries[key] = &clone
	return nil
}

// threeTermSource gives MATH 1220 three terms of history with a spike in the
// last term: registered 10, 10, then 20 active students.
func threeTermSource() *fakeSource {
	src := &fakeSource{}
	for _, tc := range []struct {
		term string
		n    int
	}{{"202410", 10}, {"202480", 10}, {"202510", 20}} {
		src.sections = append(src.sections, database.Section{
			Campus: "ABQ", College: "AS", Term: tc.term, SubjectCourse: "MATH 1220",
			Available: 5, Capacity: 30,
		})
		for i := 0; i < tc.n; i++ {
			src.enrollments = append(src.enrollments, database.Enrollment{
				Campus: "ABQ", College: "AS", Term: tc.term, SubjectCourse: "MATH 1220",
				StudentID: tc.term + "-s" + string(rune('a'+i)), RegistrationStatus: "RE",
			})
		}
	}
	return src
}

func TestEngineRunFlagsBump(t *testing.T) {
	// mean ~13.33, pop SD ~4.714: the 20-student term deviates +1.414
	// sigma and 6.67 students above the mean.
	engine := New(threeTermSource(), nil, DefaultThresholds(), DefaultTierBounds)

	bundle, err := engine.Run(context.Background(), OptionSet{Term: "202510"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bundle.Bumps) != 1 {
		t.Fatalf("expected 1 bump, got %d", len(bundle.Bumps))
	}
	if bundle.Bumps[0].ConcernTier != TierModerateHigh {
		t.Errorf("expected moderate_high at +1.41 sigma, got %v", bundle.Bumps[0].ConcernTier)
	}
	if len(bundle.Dips) != 0 {
		t.Errorf("dip must not fire on an above-normal term: %+v", bundle.Dips)
	}
	if len(bundle.AllFlaggedCourses) != 1 {
		t.Errorf("expected 1 flagged course, got %v", bundle.AllFlaggedCourses)
	}
}

func TestEngineTermFilterKeepsBaselineHistory(t *testing.T) {
	// Filtering to 202510 must not shrink the baseline to one term; the
	// bump is only detectable because prior terms stay in the baseline.
	engine := New(threeTermSource(), nil, DefaultThresholds(), DefaultTierBounds)

	bundle, err := engine.Run(context.Background(), OptionSet{Term: "202510"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bundle.Bumps) != 1 {
		t.Fatal("expected the term-filtered run to keep cross-term baselines")
	}
	for _, f := range bundle.Bumps {
		if f.Term != "202510" {
			t.Errorf("term filter leaked other terms into output: %s", f.Term)
		}
	}
}

func TestEngineEmptyInputs(t *testing.T) {
	engine := New(&fakeSource{}, nil, DefaultThresholds(), DefaultTierBounds)
	bundle, err := engine.Run(context.Background(), OptionSet{})
	if err != nil {
		t.Fatalf("empty inputs must not error: %v", err)
	}
	for _, a := range []Anomaly{AnomalyEarlyDrops, AnomalyLateDrops, AnomalyDips, AnomalyBumps, AnomalyWaits, AnomalySqueezes} {
		if len(bundle.Table(a)) != 0 {
			t.Errorf("expected empty %s table", a)
		}
	}
	if len(bundle.TieredSummary.Rows) != 0 {
		t.Errorf("expected empty summary, got %+v", bundle.TieredSummary)
	}
}

func TestEngineCacheRoundTrip(t *testing.T) {
	store := newFakeStore()
	engine := New(threeTermSource(), store, DefaultThresholds(), DefaultTierBounds)
	opts := OptionSet{Term: "202510"}

	first, err := engine.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.CacheInfo.FromCache {
		t.Error("first run must be a cold computation")
	}
	if store.puts != 1 {
		t.Errorf("expected 1 cache write, got %d", store.puts)
	}

	second, err := engine.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !second.CacheInfo.FromCache {
		t.Error("second run within TTL must come from cache")
	}
	if store.puts != 1 {
		t.Errorf("cache hit must not rewrite, got %d puts", store.puts)
	}
	if second.CacheInfo.RunID != first.CacheInfo.RunID {
		t.Error("cached bundle should be the stored computation")
	}
	if len(second.Bumps) != len(first.Bumps) {
		t.Error("cached bundle differs from the stored one")
	}
}

func TestEngineCustomThresholdsBypassCache(t *testing.T) {
	store := newFakeStore()
	engine := New(threeTermSource(), store, DefaultThresholds(), DefaultTierBounds)

	minWait := 1
	opts := OptionSet{Term: "202510", Thresholds: &ThresholdOverride{MinWait: &minWait}}

	for i := 0; i < 2; i++ {
		bundle, err := engine.Run(context.Background(), opts)
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if !bundle.CacheInfo.CustomThresholds {
			t.Error("expected custom thresholds recorded")
		}
		if bundle.CacheInfo.FromCache {
			t.Error("custom thresholds must never hit the cache")
		}
	}
	if store.gets != 0 || store.puts != 0 {
		t.Errorf("custom thresholds must never touch the cache: gets=%d puts=%d", store.gets, store.puts)
	}
}

func TestEngineAppliesThresholdOverride(t *testing.T) {
	engine := New(threeTermSource(), nil, DefaultThresholds(), DefaultTierBounds)

	// Raise the impact floor past the 6.67-student bump.
	minImpacted := 10
	opts := OptionSet{Term: "202510", Thresholds: &ThresholdOverride{MinImpacted: &minImpacted}}
	bundle, err := engine.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(bundle.Bumps) != 0 {
		t.Errorf("raised impact floor should suppress the bump: %+v", bundle.Bumps)
	}
	if bundle.Thresholds.MinImpacted != 10 {
		t.Errorf("bundle must report the thresholds actually used, got %+v", bundle.Thresholds)
	}
}

func TestEnginePassesFiltersToSource(t *testing.T) {
	src := threeTermSource()
	engine := New(src, nil, DefaultThresholds(), DefaultTierBounds)

	_, err := engine.Run(context.Background(), OptionSet{College: "AS", Campus: "ABQ", Level: "UG", Term: "202510"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(src.filters) != 1 {
		t.Fatalf("expected 1 section query, got %d", len(src.filters))
	}
	f := src.filters[0]
	if f.College != "AS" || f.Campus != "ABQ" || f.Level != "UG" {
		t.Errorf("filters not forwarded: %+v", f)
	}
}

func TestEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := New(threeTermSource(), nil, DefaultThresholds(), DefaultTierBounds)
	if _, err := engine.Run(ctx, OptionSet{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
