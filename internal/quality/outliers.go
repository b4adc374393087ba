package quality

import (
	"math"
	"sort"
)

const (
	maxOutlierSamples = 10
	iqrMultiplier     = 1.5
)

// OutlierSummary counts IQR outliers. SampleValues is a preview only: the
// first outliers in row order, not sorted by magnitude.
type OutlierSummary struct {
	Count        int       `json:"count"`
	SampleValues []float64 `json:"sample_values"`
	// Fences are reported when quartiles are defined (two or more values).
	LowerBound *float64 `json:"lower_bound,omitempty"`
	UpperBound *float64 `json:"upper_bound,omitempty"`
}

// DetectOutliers applies Tukey's rule: values strictly outside
// [Q1-1.5*IQR, Q3+1.5*IQR] are outliers. Quartiles use linear interpolation.
func DetectOutliers(values []float64) OutlierSummary {
	out := OutlierSummary{SampleValues: []float64{}}
	if len(values) < 2 {
		return out
	}
	q1, q3 := quartiles(values)
	iqr := q3 - q1
	lower := q1 - iqrMultiplier*iqr
	upper := q3 + iqrMultiplier*iqr
	out.LowerBound, out.UpperBound = &lower, &upper
	for _, v := range values {
		if v < lower || v > upper {
			out.Count++
			if len(out.SampleValues) < maxOutlierSamples {
				out.SampleValues = append(out.SampleValues, v)
			}
		}
	}
	return out
}

func quartiles(values []float64) (q1, q3 float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantile(sorted, 0.25), quantile(sorted, 0.75)
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
