package ortho

import (
	"fmt"
	"strconv"

	"github.com/airbusgeo/godal"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
)

// AlignToReference resamples target onto the grid described by refProfile,
// reprojecting between CRSs if needed. The target raster is staged in an
// in-memory GDAL dataset and warped exactly once, at the final reference
// resolution, with bilinear interpolation. Bilinear is the right kernel here:
// the samples are continuous reflectance values, and nearest-neighbour would
// manufacture discontinuities at resampled pixel edges.
//
// A nil target returns (nil, nil): the caller simply has no raster to align.
// A profile that lies about the array shape is rejected outright. Any warp
// failure comes back as an error with a nil array; alignment is never fatal.
func AlignToReference(target *raster.Array, targetProfile, refProfile raster.Profile) (*raster.Array, error) {
	if target == nil {
		return nil, nil
	}
	if err := raster.CheckShape(target, targetProfile); err != nil {
		return nil, fmt.Errorf("target profile rejected: %w", err)
	}
	if targetProfile.GridEqual(refProfile) {
		// Already on the reference grid; bilinear resampling would be the
		// identity here anyway.
		return target.Clone(), nil
	}

	src, err := godal.Create(godal.Memory, "", target.Bands, godal.Float32, target.Width, target.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory dataset: %w", err)
	}
	defer src.Close()

	if err := src.SetGeoTransform(targetProfile.Transform); err != nil {
		return nil, fmt.Errorf("failed to set source GeoTransform: %w", err)
	}
	if targetProfile.CRS != "" {
		sr, err := godal.NewSpatialRefFromWKT(targetProfile.CRS)
		if err != nil {
			return nil, fmt.Errorf("invalid source CRS: %w", err)
		}
		defer sr.Close()
		if err := src.SetSpatialRef(sr); err != nil {
			return nil, fmt.Errorf("failed to set source CRS: %w", err)
		}
	}
	for i, band := range src.Bands() {
		if err := band.Write(0, 0, target.Band(i), target.Width, target.Height); err != nil {
			return nil, fmt.Errorf("failed to stage band %d: %w", i+1, err)
		}
	}

	minX, minY, maxX, maxY := refProfile.Bounds()
	switches := []string{
		"-of", "MEM",
		"-te", floatArg(minX), floatArg(minY), floatArg(maxX), floatArg(maxY),
		"-ts", strconv.Itoa(refProfile.Width), strconv.Itoa(refProfile.Height),
		"-r", "bilinear",
		"-ot", "Float32",
	}
	if refProfile.CRS != "" {
		switches = append(switches, "-t_srs", refProfile.CRS)
	}
	warped, err := src.Warp("", switches)
	if err != nil {
		return nil, fmt.Errorf("warp onto reference grid failed: %w", err)
	}
	defer warped.Close()

	out := raster.NewArray(target.Bands, refProfile.Height, refProfile.Width)
	for i, band := range warped.Bands() {
		if err := band.Read(0, 0, out.Band(i), refProfile.Width, refProfile.Height); err != nil {
			return nil, fmt.Errorf("failed to read warped band %d: %w", i+1, err)
		}
	}
	return out, nil
}

func floatArg(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
