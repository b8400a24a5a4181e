package ortho

import (
	"testing"

	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/properties"
	"github.com/ortho-guardian/ortho-guardian-api-poc/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessSessionWithoutRGB(t *testing.T) {
	ms := raster.NewArray(4, 6, 6)
	for i := range ms.Data {
		ms.Data[i] = 128
	}
	msProfile := raster.Profile{Width: 6, Height: 6, Bands: 4}

	pair := ProcessSession(ms, msProfile, nil, raster.Profile{}, properties.DefaultNormalization())
	require.NotNil(t, pair.MS, "a session without a color capture is still valid")
	assert.Nil(t, pair.RGB)
	for _, v := range pair.MS.Data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestProcessSessionWithoutMS(t *testing.T) {
	pair := ProcessSession(nil, raster.Profile{}, nil, raster.Profile{}, properties.DefaultNormalization())
	assert.Nil(t, pair.MS)
	assert.Nil(t, pair.RGB)
}

func TestProcessSessionAlignmentFailureFailsWholeSession(t *testing.T) {
	ms := raster.NewArray(4, 6, 6)
	msProfile := raster.Profile{Width: 6, Height: 6, Bands: 4}
	rgb := raster.NewArray(3, 8, 8)
	lyingProfile := raster.Profile{Width: 99, Height: 99, Bands: 3}

	pair := ProcessSession(ms, msProfile, rgb, lyingProfile, properties.DefaultNormalization())
	assert.Nil(t, pair.MS, "an unalignable RGB fails the session, MS included")
	assert.Nil(t, pair.RGB)
}
