package regstats

import "math"

// courseKey identifies a course across terms: baselines pool every term the
// course was offered on the same campus under the same college.
type courseKey struct {
	campus, college, subjectCourse string
}

// AnnotateBaselines joins per-course means and population standard
// deviations onto every record and computes each record's normalized
// deviation. A course with a single term of history gets SD 0 and its
// deviations marked not computable, which downstream resolves to normal.
func AnnotateBaselines(records []MetricRecord) []MetricRecord {
	groups := make(map[courseKey][]int)
	for i, r := range records {
		k := courseKey{r.Campus, r.College, r.SubjectCourse}
		groups[k] = append(groups[k], i)
	}

	out := make([]MetricRecord, len(records))
	copy(out, records)

	for _, idxs := range groups {
		registered := make([]float64, len(idxs))
		earlyDrops := make([]float64, len(idxs))
		lateDrops := make([]float64, len(idxs))
		waiting := make([]float64, len(idxs))
		for i, idx := range idxs {
			registered[i] = float64(records[idx].Registered)
			earlyDrops[i] = float64(records[idx].EarlyDrops)
			lateDrops[i] = float64(records[idx].LateDrops)
			waiting[i] = float64(records[idx].Waiting)
		}

		regMean, regSD := meanPopSD(registered)
		earlyMean, earlySD := meanPopSD(earlyDrops)
		lateMean, lateSD := meanPopSD(lateDrops)
		waitMean, waitSD := meanPopSD(waiting)

		for _, idx := range idxs {
			r := &out[idx]
			r.RegisteredStats = metricStats(float64(r.Registered), regMean, regSD)
			r.EarlyDropStats = metricStats(float64(r.EarlyDrops), earlyMean, earlySD)
			r.LateDropStats = metricStats(float64(r.LateDrops), lateMean, lateSD)
			r.WaitingStats = metricStats(float64(r.Waiting), waitMean, waitSD)

			if earlyMean > 0 {
				r.Squeeze = float64(r.Available) / earlyMean
				r.SqueezeOK = true
			}
		}
	}

	return out
}

func metricStats(value, mean, sd float64) MetricStats {
	s := MetricStats{Mean: mean, SD: sd}
	if sd > 0 {
		s.Deviation = (value - mean) / sd
		s.DeviationOK = true
	}
	return s
}

// meanPopSD computes the mean and population standard deviation (divisor N,
// not N-1): the terms a course has run are the whole population of interest,
// not a sample.
func meanPopSD(values []float64) (mean, sd float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	sd = math.Sqrt(ss / n)
	return mean, sd
}
