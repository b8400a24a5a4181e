package output

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIndexImage(t *testing.T) {
	nan := float32(math.NaN())
	plane := raster.Plane{Height: 2, Width: 2, Data: []float32{-1, 0, 1, nan}}

	path := filepath.Join(t.TempDir(), "ndvi")
	require.NoError(t, CreateIndexImage(plane, path, -1, 1))

	file, err := os.Open(path + ".png")
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 2, bounds.Dx())
	assert.Equal(t, 2, bounds.Dy())

	// vmin end of the ramp is pure red, vmax end pure green
	r, g, _, _ := img.At(0, 0).RGBA()
	assert.Greater(t, r, g)
	r, g, _, _ = img.At(0, 1).RGBA()
	assert.Greater(t, g, r)
}

func TestCreateIndexImageRejectsBadRange(t *testing.T) {
	plane := raster.Plane{Height: 1, Width: 1, Data: []float32{0}}
	err := CreateIndexImage(plane, filepath.Join(t.TempDir(), "x"), 1, 1)
	assert.Error(t, err)
}
