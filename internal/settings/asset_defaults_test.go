package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialAssetDefaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	doc, err := InitialAssetDefaults(now)
	require.NoError(t, err)

	assets, ok := doc[KeyAssetDefaults].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, assets, "solar")
	assert.Contains(t, assets, "wind")
	assert.Contains(t, assets, "storage")

	solar := assets["solar"].(map[string]any)
	costs := solar["costAssumptions"].(map[string]any)
	assert.Equal(t, 1.344, costs["capexPerMW"])
	assert.Equal(t, "sculpting", costs["debtStructure"])

	platform, ok := doc[KeyPlatformDefaults].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AUD", platform["defaultCurrency"])
	assert.Equal(t, 7, platform["fiscalYearStartMonth"])

	meta := doc[KeyMetadata].(map[string]any)
	assert.Equal(t, "2025-03-01T09:30:00.000Z", meta["lastUpdated"])
	assert.Equal(t, "1.0.0", meta["version"])
}

func TestStampMetadata(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("defaults the version", func(t *testing.T) {
		meta := StampMetadata(nil, now)
		assert.Equal(t, DefaultAssetDefaultsVersion, meta["version"])
		assert.Equal(t, "2025-03-01T00:00:00.000Z", meta["lastUpdated"])
	})

	t.Run("keeps a given version and extra keys", func(t *testing.T) {
		in := map[string]any{"version": "2.1.0", "author": "ops", "lastUpdated": "old"}
		meta := StampMetadata(in, now)
		assert.Equal(t, "2.1.0", meta["version"])
		assert.Equal(t, "ops", meta["author"])
		assert.Equal(t, "2025-03-01T00:00:00.000Z", meta["lastUpdated"])
		assert.Equal(t, "old", in["lastUpdated"], "input must not be modified")
	})
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensitivity_config.json")
	f := NewJSONFile(path)

	_, err := f.Load()
	assert.Error(t, err)

	cfg := map[string]any{"parameters": map[string]any{"capex": []any{-10.0, 10.0}}}
	require.NoError(t, f.Save(cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"parameters\"")

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
