package quality

import (
	"errors"
	"math"
	"unicode/utf8"
)

// NumericStats is the extension block of numeric columns. Nil fields mean the
// statistic is undefined (no values, or fewer than two for StdDev).
type NumericStats struct {
	Min      *float64       `json:"min"`
	Max      *float64       `json:"max"`
	Mean     *float64       `json:"mean"`
	StdDev   *float64       `json:"std_dev"`
	Outliers OutlierSummary `json:"outliers"`
}

// TextStats is the extension block of textual columns; lengths count runes.
type TextStats struct {
	AvgLength *float64 `json:"avg_length"`
	MaxLength *int     `json:"max_length"`
	MinLength *int     `json:"min_length"`
}

// ColumnProfile holds the statistics of one column.
type ColumnProfile struct {
	DataType          Kind          `json:"data_type"`
	UniqueCount       int           `json:"unique_count"`
	MissingCount      int           `json:"missing_count"`
	MissingPercentage float64       `json:"missing_percentage"`
	Numeric           *NumericStats `json:"numeric,omitempty"`
	Textual           *TextStats    `json:"textual,omitempty"`
}

var errTypeMismatch = errors.New("value does not match column kind")

// ProfileColumn computes base statistics for values and the extension block
// selected by Classify. A column whose values cannot be read as its kind is
// degraded to KindOther with base statistics only.
func ProfileColumn(values []Value, declared Kind) ColumnProfile {
	return profileColumnAs(values, Classify(values, declared))
}

func profileColumnAs(values []Value, kind Kind) ColumnProfile {
	p := baseProfile(values)
	p.DataType = kind
	var err error
	switch kind {
	case KindNumeric:
		p.Numeric, err = numericStats(values)
	case KindTextual:
		p.Textual, err = textStats(values)
	}
	if err != nil {
		p.DataType = KindOther
		p.Numeric, p.Textual = nil, nil
	}
	return p
}

func baseProfile(values []Value) ColumnProfile {
	var p ColumnProfile
	unique := make(map[string]struct{})
	for _, v := range values {
		if v.IsMissing() {
			p.MissingCount++
			continue
		}
		unique[v.key()] = struct{}{}
	}
	p.UniqueCount = len(unique)
	p.MissingPercentage = percentage(p.MissingCount, len(values))
	return p
}

// percentage returns part/total*100 rounded to two decimals, 0 for an empty total.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(part)/float64(total)*100, 2)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func numericStats(values []Value) (*NumericStats, error) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, errTypeMismatch
		}
		nums = append(nums, f)
	}
	s := &NumericStats{Outliers: DetectOutliers(nums)}
	if len(nums) == 0 {
		return s, nil
	}
	lo, hi, sum := nums[0], nums[0], 0.0
	for _, x := range nums {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
		sum += x
	}
	mean := sum / float64(len(nums))
	s.Min, s.Max, s.Mean = &lo, &hi, &mean
	if len(nums) > 1 {
		var ss float64
		for _, x := range nums {
			d := x - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(nums)-1))
		s.StdDev = &std
	}
	return s, nil
}

func textStats(values []Value) (*TextStats, error) {
	s := &TextStats{}
	var n, total int
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		str, ok := v.Str()
		if !ok {
			return nil, errTypeMismatch
		}
		l := utf8.RuneCountInString(str)
		if n == 0 {
			lo, hi := l, l
			s.MinLength, s.MaxLength = &lo, &hi
		} else {
			if l < *s.MinLength {
				*s.MinLength = l
			}
			if l > *s.MaxLength {
				*s.MaxLength = l
			}
		}
		n++
		total += l
	}
	if n > 0 {
		avg := round(float64(total)/float64(n), 4)
		s.AvgLength = &avg
	}
	return s, nil
}
