package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CreateFootprintGeoJSON writes the rectangular footprint of a session's
// reference grid as a GeoJSON feature, tagged with the session date and the
// indices that were produced. Coordinates are in the profile's own CRS; the
// CRS WKT rides along as a property for consumers that need to reproject.
func CreateFootprintGeoJSON(profile raster.Profile, date string, indexNames []string, outputPath string) error {
	if !strings.HasSuffix(outputPath, ".geojson") {
		outputPath += ".geojson"
	}

	minX, minY, maxX, maxY := profile.Bounds()
	ring := orb.Ring{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
		{minX, minY},
	}

	feature := geojson.NewFeature(orb.Polygon{ring})
	feature.Properties = geojson.Properties{
		"session_date": date,
		"width":        profile.Width,
		"height":       profile.Height,
		"crs_wkt":      profile.CRS,
		"indices":      indexNames,
	}

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode footprint GeoJSON: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write footprint GeoJSON: %w", err)
	}
	return nil
}
