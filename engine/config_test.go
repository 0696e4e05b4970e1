package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCfgEntry_RecognizedKeysUpdateConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.ApplyCfgEntry("contexts/stack-size:4096"))
	assert.Equal(t, 4096, cfg.StackSizeKiB)

	require.NoError(t, cfg.ApplyCfgEntry("network/model:CM02"))
	assert.Equal(t, "CM02", cfg.NetworkModel)

	require.NoError(t, cfg.ApplyCfgEntry("network/crosstraffic:1"))
	assert.True(t, cfg.NetworkCrossTraffic)

	require.NoError(t, cfg.ApplyCfgEntry("network/TCP-gamma:0.5"))
	assert.Equal(t, 0.5, cfg.NetworkTCPGamma)

	require.NoError(t, cfg.ApplyCfgEntry("host/model:cas01"))
	assert.Equal(t, "cas01", cfg.HostModel)

	require.NoError(t, cfg.ApplyCfgEntry("plugin:energy"))
	require.NoError(t, cfg.ApplyCfgEntry("plugin:load"))
	assert.Equal(t, []string{"energy", "load"}, cfg.Plugins)

	require.NoError(t, cfg.ApplyCfgEntry("maxmin/precision:1e-6"))
	assert.Equal(t, 1e-6, cfg.MaxminPrecision)

	require.NoError(t, cfg.ApplyCfgEntry("surf/precision:1e-10"))
	assert.Equal(t, 1e-10, cfg.SurfPrecision)
}

func TestApplyCfgEntry_MalformedEntryErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyCfgEntry("no-colon-here")
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrMalformedCfgEntry{})
}

func TestApplyCfgEntry_UnknownKeyErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyCfgEntry("not/a/key:1")
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrUnknownConfigValue{})
}

func TestApplyCfgEntry_UnparseableValueErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyCfgEntry("surf/precision:not-a-float")
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrUnknownConfigValue{})
}

func TestLoadConfigYAML_OverridesDefaultsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	body := "network_model: CM02\n" +
		"network_crosstraffic: true\n" +
		"plugins: [energy, load]\n" +
		"maxmin_precision: 0.0001\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfigYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "CM02", cfg.NetworkModel)
	assert.True(t, cfg.NetworkCrossTraffic)
	assert.Equal(t, []string{"energy", "load"}, cfg.Plugins)
	assert.Equal(t, 0.0001, cfg.MaxminPrecision)
	// Fields absent from the fixture keep DefaultConfig's values.
	assert.Equal(t, "cas01", cfg.HostModel)
	assert.Equal(t, 1e-12, cfg.SurfPrecision)
}

func TestLoadConfigYAML_MissingFileErrors(t *testing.T) {
	_, err := LoadConfigYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
