package ortho

import (
	"math"
	"testing"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cfgWithStride(stride int) properties.NormalizationConfig {
	cfg := properties.DefaultNormalization()
	cfg.SampleStride = stride
	return cfg
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil, properties.DefaultNormalization()))
}

func TestNormalizeIdempotent(t *testing.T) {
	arr := raster.NewArray(1, 10, 10)
	for i := range arr.Data {
		arr.Data[i] = float32(i) / float32(len(arr.Data))
	}

	once := Normalize(arr, cfgWithStride(1))
	twice := Normalize(once, cfgWithStride(1))
	assert.Equal(t, once.Data, twice.Data)
	assert.Equal(t, arr.Data[5], float32(5)/100, "input must not be mutated")
}

func TestNormalizeClampsFloatingNoise(t *testing.T) {
	arr := raster.NewArray(1, 2, 2)
	copy(arr.Data, []float32{-0.0001, 0.5, 1.0, 1.0000001})

	out := Normalize(arr, cfgWithStride(1))
	assert.Equal(t, []float32{0, 0.5, 1, 1}, out.Data)
}

func TestNormalizeWideRangeUsesPercentile(t *testing.T) {
	// 100x100 of value 100 with a single saturated pixel: the divisor must be
	// the bulk percentile (100), not the outlier, so mid-range values keep
	// their contrast and only the outlier saturates.
	arr := raster.NewArray(1, 100, 100)
	for i := range arr.Data {
		arr.Data[i] = 100
	}
	arr.Data[0] = 10000
	arr.Data[1] = 50

	out := Normalize(arr, cfgWithStride(1))
	assert.Equal(t, float32(1), out.Data[0], "saturated outlier clips to 1")
	assert.InDelta(t, 0.5, float64(out.Data[1]), 1e-6)
	assert.InDelta(t, 1.0, float64(out.Data[2]), 1e-6)
}

func TestNormalizeIntermediateRangeUsesMax(t *testing.T) {
	arr := raster.NewArray(1, 2, 2)
	copy(arr.Data, []float32{0.7, 1.4, 0.35, 0})

	out := Normalize(arr, cfgWithStride(1))
	assert.InDelta(t, 0.5, float64(out.Data[0]), 1e-6)
	assert.InDelta(t, 1.0, float64(out.Data[1]), 1e-6)
	assert.InDelta(t, 0.25, float64(out.Data[2]), 1e-6)
	assert.InDelta(t, 0.0, float64(out.Data[3]), 1e-6)
}

func TestNormalizeStrideSampling(t *testing.T) {
	// With stride 10, pixel (5,5) is never sampled: the divisor comes from
	// the sampled 200s and the unsampled spike just clips to 1.
	arr := raster.NewArray(1, 100, 100)
	for i := range arr.Data {
		arr.Data[i] = 200
	}
	arr.Set(0, 5, 5, 100000)
	arr.Set(0, 5, 6, 100)

	out := Normalize(arr, cfgWithStride(10))
	assert.Equal(t, float32(1), out.At(0, 5, 5))
	assert.InDelta(t, 0.5, float64(out.At(0, 5, 6)), 1e-6)
	assert.InDelta(t, 1.0, float64(out.At(0, 0, 0)), 1e-6)
}

func TestNormalizeNonPositiveMaxLeavesBandUnscaled(t *testing.T) {
	arr := raster.NewArray(1, 4, 4)
	for i := range arr.Data {
		arr.Data[i] = -5
	}

	out := Normalize(arr, cfgWithStride(1))
	for _, v := range out.Data {
		require.False(t, math.IsNaN(float64(v)))
		require.False(t, math.IsInf(float64(v), 0))
		assert.Equal(t, float32(0), v)
	}
}

func TestNormalizePerBandIndependence(t *testing.T) {
	// Band 0 is reflectance already in range, band 1 is an 8-bit style band.
	// Each must be scaled by its own statistics.
	arr := raster.NewArray(2, 10, 10)
	b0, b1 := arr.Band(0), arr.Band(1)
	for i := range b0 {
		b0[i] = 0.25
		b1[i] = 128
	}

	out := Normalize(arr, cfgWithStride(1))
	assert.InDelta(t, 0.25, float64(out.Band(0)[0]), 1e-6, "in-range band untouched")
	assert.InDelta(t, 1.0, float64(out.Band(1)[0]), 1e-6, "wide-range band scaled by its own divisor")
}

func TestNormalizeKeepsNaN(t *testing.T) {
	arr := raster.NewArray(1, 2, 2)
	nan := float32(math.NaN())
	copy(arr.Data, []float32{nan, 0.5, 0.25, 1})

	out := Normalize(arr, cfgWithStride(1))
	assert.True(t, math.IsNaN(float64(out.Data[0])))
	assert.Equal(t, float32(0.5), out.Data[1])
}

func TestNormalizePlane(t *testing.T) {
	p := raster.Plane{Height: 1, Width: 4, Data: []float32{0, 64, 128, 255}}
	out := NormalizePlane(p, cfgWithStride(1))
	assert.Equal(t, []float32{0, 64, 128, 255}, p.Data, "input plane untouched")
	assert.InDelta(t, 1.0, float64(out.Data[3]), 1e-6)
	assert.Greater(t, out.Data[1], float32(0))
	assert.Less(t, out.Data[1], out.Data[2])
}
