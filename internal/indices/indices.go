// Package indices computes per-pixel vegetation indices from normalized
// orthomosaic bands.
//
// MS band layout (positional, fixed by the sensor export):
//
//	0: RED  1: GREEN  2: NIR  3: RED EDGE  (4: alpha, dropped)
//
// RGB band layout: 0: RED  1: GREEN  2: BLUE
package indices

import (
	"fmt"
	"math"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
)

// DivisionEpsilon is the magnitude below which a denominator counts as zero.
// Normalized reflectances make sums like NIR+RED legitimately approach zero
// over water and shadow; dividing there would blow the index up instead of
// marking it undefined.
const DivisionEpsilon = 1e-10

// DefaultSoilFactor is the standard SAVI L parameter.
const DefaultSoilFactor = 0.5

const (
	msBandRed     = 0
	msBandGreen   = 1
	msBandNIR     = 2
	msBandRedEdge = 3
	msBandCount   = 4

	rgbBandRed   = 0
	rgbBandGreen = 1
	rgbBandBlue  = 2
	rgbBandCount = 3
)

// Calculator derives vegetation indices from one normalized MS raster and,
// optionally, a normalized RGB raster already aligned onto the same grid.
type Calculator struct {
	red, green, nir, redEdge  raster.Plane
	rgbRed, rgbGreen, rgbBlue raster.Plane
	hasRGB                    bool
}

// NewCalculator binds the semantic bands. The MS raster must carry exactly
// the four reflectance bands, or five when the export kept its alpha band, in
// which case the fifth is dropped before binding. The RGB raster, when given,
// needs at least three bands and must match the MS grid.
func NewCalculator(ms *raster.Array, rgb *raster.Array) (*Calculator, error) {
	if ms == nil {
		return nil, fmt.Errorf("multispectral raster is required")
	}
	switch ms.Bands {
	case msBandCount, msBandCount + 1:
		// five-band exports carry alpha as band 4, which must not leak into
		// the reflectance math
	default:
		return nil, fmt.Errorf("multispectral raster has %d bands, expected %d or %d", ms.Bands, msBandCount, msBandCount+1)
	}

	c := &Calculator{
		red:     ms.Plane(msBandRed),
		green:   ms.Plane(msBandGreen),
		nir:     ms.Plane(msBandNIR),
		redEdge: ms.Plane(msBandRedEdge),
	}

	if rgb != nil {
		if rgb.Bands < rgbBandCount {
			return nil, fmt.Errorf("rgb raster has %d bands, expected at least %d", rgb.Bands, rgbBandCount)
		}
		if rgb.Height != ms.Height || rgb.Width != ms.Width {
			return nil, fmt.Errorf("rgb raster (%dx%d) is not on the multispectral grid (%dx%d)",
				rgb.Height, rgb.Width, ms.Height, ms.Width)
		}
		c.rgbRed = rgb.Plane(rgbBandRed)
		c.rgbGreen = rgb.Plane(rgbBandGreen)
		c.rgbBlue = rgb.Plane(rgbBandBlue)
		c.hasRGB = true
	}
	return c, nil
}

// HasRGB reports whether the RGB-dependent indices are available.
func (c *Calculator) HasRGB() bool {
	return c.hasRGB
}

// SafeDivide divides two planes pixel by pixel, writing NaN wherever the
// denominator is zero or smaller in magnitude than DivisionEpsilon. Every
// ratio index goes through here; NaN is the one sentinel policy for an
// undefined pixel.
func SafeDivide(num, den raster.Plane) raster.Plane {
	nan := float32(math.NaN())
	out := raster.Plane{Height: num.Height, Width: num.Width, Data: make([]float32, len(num.Data))}
	for i := range num.Data {
		d := float64(den.Data[i])
		if d == 0 || math.Abs(d) < DivisionEpsilon {
			out.Data[i] = nan
			continue
		}
		out.Data[i] = num.Data[i] / den.Data[i]
	}
	return out
}

// NDVI = (NIR - RED) / (NIR + RED), clipped to the physical range [-1, 1].
func (c *Calculator) NDVI() raster.Plane {
	res := SafeDivide(subtract(c.nir, c.red), add(c.nir, c.red))
	clip(res, -1, 1)
	return res
}

// NDRE = (NIR - RedEdge) / (NIR + RedEdge), clipped to [-1, 1].
func (c *Calculator) NDRE() raster.Plane {
	res := SafeDivide(subtract(c.nir, c.redEdge), add(c.nir, c.redEdge))
	clip(res, -1, 1)
	return res
}

// SAVI = ((NIR - RED) / (NIR + RED + L)) * (1 + L). L dampens soil
// brightness; pass DefaultSoilFactor unless calibrating.
func (c *Calculator) SAVI(l float64) raster.Plane {
	den := add(c.nir, c.red)
	addScalar(den, float32(l))
	res := SafeDivide(subtract(c.nir, c.red), den)
	scale(res, float32(1+l))
	return res
}

// GNDVI = (NIR - GREEN) / (NIR + GREEN), clipped to [-1, 1].
func (c *Calculator) GNDVI() raster.Plane {
	res := SafeDivide(subtract(c.nir, c.green), add(c.nir, c.green))
	clip(res, -1, 1)
	return res
}

// VARI = (GREEN - RED) / (GREEN + RED - BLUE), from the RGB capture. Returns
// ok=false without an RGB raster.
func (c *Calculator) VARI() (raster.Plane, bool) {
	if !c.hasRGB {
		return raster.Plane{}, false
	}
	den := add(c.rgbGreen, c.rgbRed)
	for i := range den.Data {
		den.Data[i] -= c.rgbBlue.Data[i]
	}
	return SafeDivide(subtract(c.rgbGreen, c.rgbRed), den), true
}

// ExG = 2*GREEN - RED - BLUE, from the RGB capture.
func (c *Calculator) ExG() (raster.Plane, bool) {
	if !c.hasRGB {
		return raster.Plane{}, false
	}
	out := raster.Plane{Height: c.rgbGreen.Height, Width: c.rgbGreen.Width, Data: make([]float32, len(c.rgbGreen.Data))}
	for i := range out.Data {
		out.Data[i] = 2*c.rgbGreen.Data[i] - c.rgbRed.Data[i] - c.rgbBlue.Data[i]
	}
	return out, true
}

// EVI = 2.5 * (NIR - RED) / (NIR + 6*RED - 7.5*BLUE + 1). Hybrid form: NIR
// and RED from the MS sensor, BLUE from the aligned RGB capture.
func (c *Calculator) EVI() (raster.Plane, bool) {
	if !c.hasRGB {
		return raster.Plane{}, false
	}
	den := raster.Plane{Height: c.nir.Height, Width: c.nir.Width, Data: make([]float32, len(c.nir.Data))}
	for i := range den.Data {
		den.Data[i] = c.nir.Data[i] + 6*c.red.Data[i] - 7.5*c.rgbBlue.Data[i] + 1
	}
	res := SafeDivide(subtract(c.nir, c.red), den)
	scale(res, 2.5)
	return res, true
}

// MainIndices computes every index the available inputs support. The MS-only
// set (ndvi, ndre, savi, gndvi) is always present; vari, exg and evi join
// when an RGB raster was bound.
func (c *Calculator) MainIndices() map[string]raster.Plane {
	out := map[string]raster.Plane{
		"ndvi":  c.NDVI(),
		"ndre":  c.NDRE(),
		"savi":  c.SAVI(DefaultSoilFactor),
		"gndvi": c.GNDVI(),
	}
	if vari, ok := c.VARI(); ok {
		out["vari"] = vari
	}
	if exg, ok := c.ExG(); ok {
		out["exg"] = exg
	}
	if evi, ok := c.EVI(); ok {
		out["evi"] = evi
	}
	return out
}

func add(a, b raster.Plane) raster.Plane {
	out := raster.Plane{Height: a.Height, Width: a.Width, Data: make([]float32, len(a.Data))}
	for i := range out.Data {
		out.Data[i] = a.Data[i] + b.Data[i]
	}
	return out
}

func subtract(a, b raster.Plane) raster.Plane {
	out := raster.Plane{Height: a.Height, Width: a.Width, Data: make([]float32, len(a.Data))}
	for i := range out.Data {
		out.Data[i] = a.Data[i] - b.Data[i]
	}
	return out
}

func addScalar(p raster.Plane, v float32) {
	for i := range p.Data {
		p.Data[i] += v
	}
}

func scale(p raster.Plane, v float32) {
	for i := range p.Data {
		p.Data[i] *= v
	}
}

// clip clamps finite values into [lo, hi]; NaN sentinels stay NaN.
func clip(p raster.Plane, lo, hi float32) {
	for i, v := range p.Data {
		if v < lo {
			p.Data[i] = lo
		} else if v > hi {
			p.Data[i] = hi
		}
	}
}
