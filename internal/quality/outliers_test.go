package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers_FlagsOnlyExtremeValue(t *testing.T) {
	got := DetectOutliers([]float64{1, 2, 3, 4, 5, 5, 7, 8, 9, 1000000})

	assert.Equal(t, 1, got.Count)
	assert.Equal(t, []float64{1000000}, got.SampleValues)
	// Linear interpolation: Q1=3.25, Q3=7.75, IQR=4.5.
	require.NotNil(t, got.LowerBound)
	require.NotNil(t, got.UpperBound)
	assert.InDelta(t, -3.5, *got.LowerBound, 1e-12)
	assert.InDelta(t, 14.5, *got.UpperBound, 1e-12)
}

func TestDetectOutliers_BoundsAreStrict(t *testing.T) {
	// Q1=1, Q3=3, IQR=2: fences at -2 and 6; 6 sits exactly on the fence.
	got := DetectOutliers([]float64{1, 1, 3, 3, 6})
	assert.InDelta(t, 6.0, *got.UpperBound, 1e-12)
	assert.Equal(t, 0, got.Count)
}

func TestDetectOutliers_Degenerate(t *testing.T) {
	for _, in := range [][]float64{nil, {}, {42}} {
		got := DetectOutliers(in)
		assert.Equal(t, 0, got.Count)
		assert.Equal(t, []float64{}, got.SampleValues)
		assert.Nil(t, got.LowerBound)
		assert.Nil(t, got.UpperBound)
	}
}

func TestDetectOutliers_SamplesKeepRowOrderAndLimit(t *testing.T) {
	values := make([]float64, 0, 60)
	for i := 0; i < 48; i++ {
		values = append(values, 10)
	}
	extremes := []float64{-500, 900, -100, 300, 1000, -700, 200, 800, -300, 600, 400, -900}
	values = append(values, extremes...)

	got := DetectOutliers(values)
	assert.Equal(t, len(extremes), got.Count)
	assert.Equal(t, extremes[:10], got.SampleValues)
}

func TestDetectOutliers_DoesNotReorderInput(t *testing.T) {
	in := []float64{9, 1, 5}
	DetectOutliers(in)
	assert.Equal(t, []float64{9, 1, 5}, in)
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, quantile(sorted, 0))
	assert.Equal(t, 4.0, quantile(sorted, 1))
	assert.Equal(t, 1.75, quantile(sorted, 0.25))
	assert.Equal(t, 2.5, quantile(sorted, 0.5))
	assert.Equal(t, 0.0, quantile(nil, 0.5))
}
