package ortho

import (
	"fmt"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
)

// NormalizedPair is the analysis-ready output of one session: both rasters on
// the MS grid with every finite value in [0,1]. RGB is nil when the session
// had no color capture. A failed session carries nil for both.
type NormalizedPair struct {
	MS  *raster.Array
	RGB *raster.Array
}

// ProcessSession runs the full two-stage normalization for one MS/RGB pair.
// The MS raster defines the reference grid, so it is never resampled; the RGB
// raster is warped onto that grid, then both are radiometrically normalized.
//
// A missing RGB raster is fine: the MS side is still normalized and the pair
// comes back with a nil RGB. A present-but-unalignable RGB is a failed
// session: the diagnostic is printed and both outputs are nil, so one bad
// capture never poisons the indices downstream.
func ProcessSession(ms *raster.Array, msProfile raster.Profile, rgb *raster.Array, rgbProfile raster.Profile, cfg properties.NormalizationConfig) NormalizedPair {
	if ms == nil {
		fmt.Println("Session skipped: no multispectral raster supplied")
		return NormalizedPair{}
	}

	var rgbAligned *raster.Array
	if rgb != nil {
		var err error
		rgbAligned, err = AlignToReference(rgb, rgbProfile, msProfile)
		if err != nil {
			fmt.Printf("Spatial alignment failed: %v\n", err)
			return NormalizedPair{}
		}
	}

	return NormalizedPair{
		MS:  Normalize(ms, cfg),
		RGB: Normalize(rgbAligned, cfg),
	}
}
