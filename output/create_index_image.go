package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
)

// CreateIndexImage renders an index map as a PNG heatmap with a
// red-yellow-green ramp over [vmin, vmax]. Pixels where the index is
// undefined (NaN) are drawn neutral gray. Normalized-difference indices want
// vmin=-1, vmax=1; unclipped indices can pass their observed range.
func CreateIndexImage(plane raster.Plane, outputImagePath string, vmin, vmax float64) error {
	if !strings.HasSuffix(outputImagePath, ".png") {
		outputImagePath += ".png"
	}
	if vmax <= vmin {
		return fmt.Errorf("invalid value range [%v, %v]", vmin, vmax)
	}

	dc := gg.NewContext(plane.Width, plane.Height)
	for y := 0; y < plane.Height; y++ {
		for x := 0; x < plane.Width; x++ {
			v := float64(plane.Data[y*plane.Width+x])
			if math.IsNaN(v) {
				dc.SetRGB(0.5, 0.5, 0.5)
			} else {
				t := (v - vmin) / (vmax - vmin)
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
				r, g, b := rampColor(t)
				dc.SetRGB(r, g, b)
			}
			dc.SetPixel(x, y)
		}
	}

	if err := dc.SavePNG(outputImagePath); err != nil {
		return fmt.Errorf("failed to save index image: %w", err)
	}
	return nil
}

// rampColor maps t in [0,1] through red -> yellow -> green.
func rampColor(t float64) (float64, float64, float64) {
	if t < 0.5 {
		return 1, 2 * t, 0
	}
	return 2 * (1 - t), 1, 0
}
