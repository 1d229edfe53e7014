package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		assert := require.New(t)

		p := writeFile(t, t.TempDir(), "vtxd.toml", `
[server]
bind = "127.0.0.1:9090"

[calibration]
min_safe_distance_mhz = 40.0

[calibration.risk]
critical = 50.0
high = 30.0
medium = 15.0
low = 5.0
`)
		cfg, err := Load(p)
		assert.NoError(err)
		assert.Equal("127.0.0.1:9090", cfg.Server.Bind)
		assert.Equal("info", cfg.Logging.Level)
		assert.Equal("/metrics", cfg.Metrics.Path)
		assert.Equal(40.0, cfg.Calibration.MinSafeDistance)
		assert.Equal(50.0, cfg.Calibration.Risk.Critical)
		assert.Equal(1.2, cfg.Calibration.Signal.DecayConstant)
		assert.Equal(5.0, cfg.Calibration.Multipliers.CrowdedClustered.Max)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})

	t.Run("malformed toml", func(t *testing.T) {
		p := writeFile(t, t.TempDir(), "bad.toml", "[server\nbind = ")
		_, err := Load(p)
		require.Error(t, err)
	})

	tests := []struct {
		name string
		body string
	}{
		{"empty bind", "[server]\nbind = \"\"\n"},
		{"unknown log format", "[logging]\nformat = \"xml\"\n"},
		{"relative metrics path", "[metrics]\nenabled = true\npath = \"metrics\"\n"},
		{"bad calibration", "[calibration]\nmin_safe_distance_mhz = 0.0\n"},
		{"nan min safe distance", "[calibration]\nmin_safe_distance_mhz = nan\n"},
		{"demo without interval", "[demo]\nenabled = true\ninterval_seconds = 0\n"},
		{"unordered risk", "[calibration.risk]\ncritical = 10.0\nhigh = 20.0\n"},
	}
	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "vtxd.toml", tst.body)
			_, err := Load(p)
			require.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	assert := require.New(t)
	cfg := Default()
	assert.NoError(validate(cfg))
	assert.False(cfg.Demo.Enabled)
	assert.Equal(30, cfg.Demo.IntervalSeconds)
}

func TestProfiles(t *testing.T) {
	assert := require.New(t)

	dir := t.TempDir()
	writeFile(t, dir, "race.toml", "[server]\nbind = \"0.0.0.0:8081\"\n")
	writeFile(t, dir, "freestyle.toml", "")
	writeFile(t, dir, "notes.txt", "ignored")

	profiles, err := ListProfiles(dir)
	assert.NoError(err)
	assert.Len(profiles, 2)
	assert.Equal("freestyle", profiles[0].Name)
	assert.Equal("race", profiles[1].Name)

	p, err := ProfilePath(dir, "race")
	assert.NoError(err)
	assert.Equal(filepath.Join(dir, "race.toml"), p)

	_, err = ProfilePath(dir, "missing")
	assert.Error(err)
	_, err = ProfilePath(dir, "../race")
	assert.Error(err)

	none, err := ListProfiles(filepath.Join(dir, "absent"))
	assert.NoError(err)
	assert.Empty(none)
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("VTXD_CONFIG_DIR", "/tmp/vtxd-profiles")
	require.Equal(t, "/tmp/vtxd-profiles", DefaultConfigDir())
}
