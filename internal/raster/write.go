package raster

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// WriteIndexTIFF persists a single-band float32 plane (typically a vegetation
// index map) as a GeoTIFF on the grid described by profile. The plane must
// match the profile's spatial dimensions.
func WriteIndexTIFF(outputPath string, plane Plane, profile Profile) error {
	if plane.Height != profile.Height || plane.Width != profile.Width {
		return fmt.Errorf("index plane (%dx%d) does not match profile grid (%dx%d)",
			plane.Height, plane.Width, profile.Height, profile.Width)
	}

	ds, err := godal.Create(godal.GTiff, outputPath, 1, godal.Float32, profile.Width, profile.Height)
	if err != nil {
		return fmt.Errorf("failed to create GeoTIFF at %s: %w", outputPath, err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(profile.Transform); err != nil {
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}
	if profile.CRS != "" {
		sr, err := godal.NewSpatialRefFromWKT(profile.CRS)
		if err != nil {
			return fmt.Errorf("failed to parse CRS: %w", err)
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("failed to set CRS: %w", err)
		}
	}

	band := ds.Bands()[0]
	if err := band.Write(0, 0, plane.Data, profile.Width, profile.Height); err != nil {
		return fmt.Errorf("failed to write index band: %w", err)
	}
	return nil
}
