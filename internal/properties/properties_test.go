package properties

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNormalizationConfigDefaults(t *testing.T) {
	cfg, err := LoadNormalizationConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultNormalization(), cfg)

	cfg, err = LoadNormalizationConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultNormalization(), cfg)
}

func TestLoadNormalizationConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normalization.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wide_range_min: 2.0\nsample_stride: 5\n"), 0644))

	cfg, err := LoadNormalizationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.WideRangeMin)
	assert.Equal(t, 5, cfg.SampleStride)
	assert.Equal(t, 1.0, cfg.NormalizedMax, "unset keys keep defaults")
	assert.Equal(t, 0.999, cfg.ScalePercentile)
}

func TestLoadNormalizationConfigRejectsBadPercentile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normalization.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scale_percentile: 1.5\n"), 0644))

	_, err := LoadNormalizationConfig(path)
	assert.Error(t, err)
}
