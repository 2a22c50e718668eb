package regstats

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cedarstats/regstats/internal/database"
)

// Source supplies the raw section and enrollment tables for a run. The term
// filter is deliberately absent here: baselines need every term a course has
// run, so the engine applies the term restriction after annotation.
type Source interface {
	GetSections(f database.Filter) ([]database.Section, error)
	GetEnrollments(f database.Filter) ([]database.Enrollment, error)
}

// CacheStore caches finished bundles keyed by filter signature. Get returns
// false on any miss, including expired or unreadable entries.
type CacheStore interface {
	Get(key string) (*Bundle, bool)
	Put(key string, b *Bundle) error
}

// CacheInfo records how a bundle was produced.
type CacheInfo struct {
	GeneratedAt      time.Time `json:"generated_at"`
	RunID            string    `json:"run_id"`
	CacheKey         string    `json:"cache_key"`
	CustomThresholds bool      `json:"custom_thresholds"`
	FromCache        bool      `json:"from_cache"`
}

// Bundle is the full result of one run: the six flagged tables, the tiered
// summary, the thresholds actually used, and cache metadata.
type Bundle struct {
	EarlyDrops []FlaggedRecord `json:"early_drops"`
	LateDrops  []FlaggedRecord `json:"late_drops"`
	Dips       []FlaggedRecord `json:"dips"`
	Bumps      []FlaggedRecord `json:"bumps"`
	Waits      []FlaggedRecord `json:"waits"`
	Squeezes   []FlaggedRecord `json:"squeezes"`

	TieredSummary     TieredSummary `json:"tiered_summary"`
	Thresholds        ThresholdSet  `json:"thresholds"`
	AllFlaggedCourses []string      `json:"all_flagged_courses"`
	CacheInfo         CacheInfo     `json:"cache_info"`
}

// Table returns the flagged table for an anomaly type.
func (b *Bundle) Table(a Anomaly) []FlaggedRecord {
	switch a {
	case AnomalyEarlyDrops:
		return b.EarlyDrops
	case AnomalyLateDrops:
		return b.LateDrops
	case AnomalyDips:
		return b.Dips
	case AnomalyBumps:
		return b.Bumps
	case AnomalyWaits:
		return b.Waits
	case AnomalySqueezes:
		return b.Squeezes
	}
	return nil
}

// Engine runs the anomaly detection pipeline over a Source, with an optional
// bundle cache.
type Engine struct {
	source   Source
	cache    CacheStore
	defaults ThresholdSet
	bounds   TierBounds
}

// New creates an engine. cache may be nil to disable caching entirely.
func New(source Source, cache CacheStore, defaults ThresholdSet, bounds TierBounds) *Engine {
	return &Engine{source: source, cache: cache, defaults: defaults, bounds: bounds}
}

// Run executes one synchronous pass: cache check, aggregate, annotate,
// classify, summarize, cache store. Custom thresholds never touch the cache
// in either direction; cached results computed under ad-hoc gates would
// poison later default-threshold calls.
func (e *Engine) Run(ctx context.Context, opts OptionSet) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := opts.CacheKey()
	custom := opts.CustomThresholds()

	if !custom && e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			log.Printf("cache hit for %s", key)
			cached.CacheInfo.FromCache = true
			return cached, nil
		}
	}

	filter := database.Filter{
		College: opts.College,
		Campus:  opts.Campus,
		Level:   opts.Level,
	}
	sections, err := e.source.GetSections(filter)
	if err != nil {
		return nil, fmt.Errorf("loading sections: %w", err)
	}
	enrollments, err := e.source.GetEnrollments(filter)
	if err != nil {
		return nil, fmt.Errorf("loading enrollments: %w", err)
	}

	log.Printf("aggregating %d enrollments across %d sections", len(enrollments), len(sections))
	records := Aggregate(sections, enrollments)
	records = AnnotateBaselines(records)

	if opts.Term != "" {
		records = filterTerm(records, opts.Term)
	}

	thresholds := opts.Thresholds.Apply(e.defaults)

	tables := make(map[Anomaly][]FlaggedRecord)
	for _, c := range Classifiers() {
		tables[c.Anomaly] = c.Classify(records, thresholds, e.bounds)
	}

	bundle := &Bundle{
		EarlyDrops:        tables[AnomalyEarlyDrops],
		LateDrops:         tables[AnomalyLateDrops],
		Dips:              tables[AnomalyDips],
		Bumps:             tables[AnomalyBumps],
		Waits:             tables[AnomalyWaits],
		Squeezes:          tables[AnomalySqueezes],
		TieredSummary:     BuildTieredSummary(tables),
		Thresholds:        thresholds,
		AllFlaggedCourses: AllFlaggedCourses(tables),
		CacheInfo: CacheInfo{
			GeneratedAt:      time.Now().UTC(),
			RunID:            uuid.NewString(),
			CacheKey:         key,
			CustomThresholds: custom,
		},
	}

	if !custom && e.cache != nil {
		if err := e.cache.Put(key, bundle); err != nil {
			// The cache is an optimization; a failed write never fails the run.
			log.Printf("cache write for %s failed: %v", key, err)
		}
	}

	log.Printf("run complete: %d courses flagged (%d critical, %d moderate)",
		len(bundle.AllFlaggedCourses), bundle.TieredSummary.CriticalTotal, bundle.TieredSummary.ModerateTotal)
	return bundle, nil
}

func filterTerm(records []MetricRecord, term string) []MetricRecord {
	out := records[:0:0]
	for _, r := range records {
		if r.Term == term {
			out = append(out, r)
		}
	}
	return out
}
