package ortho

import (
	"math"
	"sort"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"gonum.org/v1/gonum/stat"
)

// Normalize rescales a raster into [0,1], band by band for multi-band input
// and as a single plane otherwise. Each band picks its own scaling strategy
// from its own sampled statistics, so a reflectance band and an alpha/mask
// band in the same raster do not distort each other.
//
// Per band, with cutoffs from cfg:
//   - sampled max <= NormalizedMax: already normalized, clamp only
//   - sampled max >  WideRangeMin: divide by the ScalePercentile quantile of
//     the sample, so a handful of saturated pixels cannot compress the bulk
//     of the distribution toward zero
//   - in between: divide by the sampled max itself
//
// The estimate scans every SampleStride-th row and column; the clamp at the
// end runs over the full plane. NaN samples pass through untouched. Returns a
// new array; the input is never modified. A nil input yields nil.
func Normalize(arr *raster.Array, cfg properties.NormalizationConfig) *raster.Array {
	if arr == nil {
		return nil
	}
	out := arr.Clone()
	if out.Bands > 1 {
		for b := 0; b < out.Bands; b++ {
			normalizePlane(out.Band(b), out.Height, out.Width, cfg)
		}
	} else {
		normalizePlane(out.Data, out.Height, out.Width, cfg)
	}
	return out
}

// NormalizePlane applies the same adaptive rescale to a standalone plane.
func NormalizePlane(p raster.Plane, cfg properties.NormalizationConfig) raster.Plane {
	data := make([]float32, len(p.Data))
	copy(data, p.Data)
	normalizePlane(data, p.Height, p.Width, cfg)
	return raster.Plane{Height: p.Height, Width: p.Width, Data: data}
}

func normalizePlane(data []float32, height, width int, cfg properties.NormalizationConfig) {
	sample := samplePlane(data, height, width, cfg.SampleStride)

	if len(sample) > 0 {
		currentMax := sample[len(sample)-1]
		var scale float64
		switch {
		case currentMax <= cfg.NormalizedMax:
			// Already in range, the clamp below handles floating noise.
			scale = 0
		case currentMax > cfg.WideRangeMin:
			scale = stat.Quantile(cfg.ScalePercentile, stat.Empirical, sample, nil)
		default:
			scale = currentMax
		}
		if scale > 0 {
			inv := float32(1 / scale)
			for i, v := range data {
				data[i] = v * inv
			}
		}
	}

	for i, v := range data {
		if v < 0 {
			data[i] = 0
		} else if v > 1 {
			data[i] = 1
		}
	}
}

// samplePlane collects every stride-th pixel of the plane, dropping NaNs, and
// returns the values sorted ascending as gonum's quantile expects.
func samplePlane(data []float32, height, width, stride int) []float64 {
	if stride < 1 {
		stride = 1
	}
	sample := make([]float64, 0, (height/stride+1)*(width/stride+1))
	for y := 0; y < height; y += stride {
		row := data[y*width : (y+1)*width]
		for x := 0; x < width; x += stride {
			v := float64(row[x])
			if !math.IsNaN(v) {
				sample = append(sample, v)
			}
		}
	}
	sort.Float64s(sample)
	return sample
}
