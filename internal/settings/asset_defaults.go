package settings

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed asset_defaults.yaml
var assetDefaultsYAML []byte

// Top-level keys of an asset defaults document.
const (
	KeyAssetDefaults    = "assetDefaults"
	KeyPlatformDefaults = "platformDefaults"
	KeyMetadata         = "metadata"
)

// DefaultAssetDefaultsVersion is stamped on saved defaults that carry no version.
const DefaultAssetDefaultsVersion = "1.0.0"

// timestampLayout matches the millisecond UTC timestamps the settings page writes.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// InitialAssetDefaults returns a fresh copy of the embedded asset defaults with
// metadata.lastUpdated set to now.
func InitialAssetDefaults(now time.Time) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(assetDefaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse asset defaults: %w", err)
	}
	meta, _ := doc[KeyMetadata].(map[string]any)
	doc[KeyMetadata] = StampMetadata(meta, now)
	return doc, nil
}

// StampMetadata returns a copy of meta with lastUpdated set to now and version
// defaulted to DefaultAssetDefaultsVersion.
func StampMetadata(meta map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(meta)+2)
	for k, v := range meta {
		out[k] = v
	}
	out["lastUpdated"] = now.UTC().Format(timestampLayout)
	if v, ok := out["version"].(string); !ok || v == "" {
		out["version"] = DefaultAssetDefaultsVersion
	}
	return out
}
