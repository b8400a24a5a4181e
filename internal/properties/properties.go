package properties

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

// NormalizationConfig holds the tunables of the radiometric normalizer. The
// cutoffs are empirical, not physical, so they live in config instead of
// being buried as literals in the scaling code.
type NormalizationConfig struct {
	// NormalizedMax: a band whose sampled max is at or below this is treated
	// as already normalized and only clamped.
	NormalizedMax float64 `yaml:"normalized_max"`
	// WideRangeMin: above this the band is assumed to be integer-range data
	// (0-255, 0-65535, ...) and is scaled by a high percentile so saturated
	// outliers do not crush the rest of the distribution.
	WideRangeMin float64 `yaml:"wide_range_min"`
	// ScalePercentile: quantile used as the divisor for wide-range bands.
	ScalePercentile float64 `yaml:"scale_percentile"`
	// SampleStride: the max estimate reads every Nth row and column instead
	// of the full raster.
	SampleStride int `yaml:"sample_stride"`
}

// DefaultNormalization returns the calibration used for the current sensor
// pair.
func DefaultNormalization() NormalizationConfig {
	return NormalizationConfig{
		NormalizedMax:   1.0,
		WideRangeMin:    1.5,
		ScalePercentile: 0.999,
		SampleStride:    10,
	}
}

// LoadNormalizationConfig reads threshold overrides from a YAML file, falling
// back to defaults for anything unset. A missing file is not an error: it
// just means the defaults apply.
func LoadNormalizationConfig(path string) (NormalizationConfig, error) {
	cfg := DefaultNormalization()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read normalization config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse normalization config %s: %w", path, err)
	}
	if cfg.SampleStride < 1 {
		cfg.SampleStride = 1
	}
	if cfg.ScalePercentile <= 0 || cfg.ScalePercentile > 1 {
		return cfg, fmt.Errorf("scale_percentile must be in (0,1], got %v", cfg.ScalePercentile)
	}
	return cfg, nil
}
