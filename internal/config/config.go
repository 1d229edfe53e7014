// Package config handles loading, defaulting, and validation of the vtxd
// TOML configuration file. Every section maps to a typed struct so the rest
// of the codebase gets strong typing without manual key lookups.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/large-farva/vtx-planner/internal/interference"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Server      ServerConfig             `toml:"server"      json:"server"`
	Logging     LoggingConfig            `toml:"logging"     json:"logging"`
	Catalog     CatalogConfig            `toml:"catalog"     json:"catalog"`
	Metrics     MetricsConfig            `toml:"metrics"     json:"metrics"`
	Demo        DemoConfig               `toml:"demo"        json:"demo"`
	Calibration interference.Calibration `toml:"calibration" json:"calibration"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

type LoggingConfig struct {
	Level  string `toml:"level"  json:"level"`
	Format string `toml:"format" json:"format"`
}

// CatalogConfig points at a channel table on disk. An empty path selects
// the table compiled into the binary.
type CatalogConfig struct {
	Path string `toml:"path" json:"path"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path"    json:"path"`
}

// DemoConfig turns on the simulated heat generator.
type DemoConfig struct {
	Enabled         bool `toml:"enabled"          json:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds" json:"interval_seconds"`
	GroupSize       int  `toml:"group_size"       json:"group_size"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "0.0.0.0:8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Demo: DemoConfig{
			IntervalSeconds: 30,
			GroupSize:       4,
		},
		Calibration: interference.DefaultCalibration(),
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config error")
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Server.Bind == "" {
		return errors.New("server.bind must not be empty")
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		return errors.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	if cfg.Demo.Enabled && (cfg.Demo.IntervalSeconds <= 0 || cfg.Demo.GroupSize <= 0) {
		return errors.New("demo.interval_seconds and demo.group_size must be > 0")
	}
	if err := cfg.Calibration.Validate(); err != nil {
		return errors.Wrap(err, "calibration")
	}
	return nil
}

// DefaultConfigDir is where named profiles live. VTXD_CONFIG_DIR overrides
// it.
func DefaultConfigDir() string {
	if dir := os.Getenv("VTXD_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "/etc/vtxd"
}

// ProfileInfo describes one TOML file in the config directory.
type ProfileInfo struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListProfiles returns the *.toml files in dir sorted by name. A missing
// directory yields no profiles and no error.
func ListProfiles(dir string) ([]ProfileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, errors.Wrap(err, "list profiles error")
	}

	var out []ProfileInfo
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		out = append(out, ProfileInfo{
			Name:       strings.TrimSuffix(filepath.Base(m), ".toml"),
			Path:       m,
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ProfilePath resolves a profile name to its file in dir.
func ProfilePath(dir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errors.Errorf("invalid profile name %q", name)
	}
	p := filepath.Join(dir, name+".toml")
	if _, err := os.Stat(p); err != nil {
		return "", errors.Wrapf(err, "profile %q not found", name)
	}
	return p, nil
}
