package raster

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
)

// ReadTIFFArray opens a GeoTIFF and returns its full content as a float32
// Array plus the Profile describing its grid. The cast to float32 happens at
// read time so the radiometric normalization downstream never has to care
// about the on-disk bit depth.
func ReadTIFFArray(tiffPath string) (*Array, Profile, error) {
	if _, err := os.Stat(tiffPath); err != nil {
		return nil, Profile{}, fmt.Errorf("orthomosaic not found at %s: %w", tiffPath, err)
	}

	ds, err := godal.Open(tiffPath, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec <= godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return nil, Profile{}, fmt.Errorf("failed to open TIFF file: %w", err)
	}
	defer ds.Close()

	profile, err := ProfileOf(ds)
	if err != nil {
		return nil, Profile{}, err
	}
	if profile.CRS == "" {
		return nil, Profile{}, fmt.Errorf("file %s has no CRS, not a valid geotiff", tiffPath)
	}

	arr := NewArray(profile.Bands, profile.Height, profile.Width)
	for i, band := range ds.Bands() {
		if err := band.Read(0, 0, arr.Band(i), profile.Width, profile.Height); err != nil {
			return nil, Profile{}, fmt.Errorf("failed to read band %d of %s: %w", i+1, tiffPath, err)
		}
	}
	return arr, profile, nil
}

// ProfileOf captures the geospatial profile of an open dataset.
func ProfileOf(ds *godal.Dataset) (Profile, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get GeoTransform: %w", err)
	}

	var wkt string
	if sr := ds.SpatialRef(); sr != nil {
		defer sr.Close()
		wkt, err = sr.WKT()
		if err != nil {
			wkt = ""
		}
	}

	st := ds.Structure()
	return Profile{
		CRS:       wkt,
		Transform: gt,
		Width:     st.SizeX,
		Height:    st.SizeY,
		Bands:     st.NBands,
		DataType:  st.DataType,
	}, nil
}
