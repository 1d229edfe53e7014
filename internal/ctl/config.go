package ctl

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", nil, &raw); err != nil {
		return err
	}

	if jsonOutput {
		var v any
		_ = json.Unmarshal(raw, &v)
		return printJSON(v)
	}

	type tier struct {
		Max float64 `json:"max"`
		Min float64 `json:"min"`
	}
	type coef struct {
		Direct float64 `json:"direct"`
		IMD    float64 `json:"imd"`
	}
	var cfg struct {
		Server struct {
			Bind string `json:"bind"`
		} `json:"server"`
		Logging struct {
			Level  string `json:"level"`
			Format string `json:"format"`
		} `json:"logging"`
		Catalog struct {
			Path string `json:"path"`
		} `json:"catalog"`
		Metrics struct {
			Enabled bool   `json:"enabled"`
			Path    string `json:"path"`
		} `json:"metrics"`
		Calibration struct {
			Signal struct {
				DecayConstant float64 `json:"decay_constant"`
				ChannelWidth  float64 `json:"channel_width_mhz"`
			} `json:"signal"`
			MinSafeDistance float64 `json:"min_safe_distance_mhz"`
			CloseFactor     float64 `json:"close_factor"`
			CrowdedCount    int     `json:"crowded_count"`
			ClusteredCount  int     `json:"clustered_count"`
			IMDOrder        int     `json:"imd_order"`
			Multipliers     struct {
				Sparse           tier `json:"sparse"`
				Clustered        tier `json:"clustered"`
				Crowded          tier `json:"crowded"`
				CrowdedClustered tier `json:"crowded_clustered"`
			} `json:"multipliers"`
			Coefficients struct {
				Sparse    coef `json:"sparse"`
				Clustered coef `json:"clustered"`
			} `json:"coefficients"`
			Risk struct {
				Critical float64 `json:"critical"`
				High     float64 `json:"high"`
				Medium   float64 `json:"medium"`
				Low      float64 `json:"low"`
			} `json:"risk"`
			Overlap struct {
				Full    float64 `json:"full"`
				Partial float64 `json:"partial"`
				Close   float64 `json:"close"`
			} `json:"overlap"`
		} `json:"calibration"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  DAEMON CONFIGURATION"))
	fmt.Fprintln(stdout, rule(50))

	section := func(name string) {
		fmt.Fprintf(stdout, "\n  %s\n", colorize(bold, "["+name+"]"))
	}
	field := func(key string, val any) {
		fmt.Fprintf(stdout, "    %-24s %v\n", colorize(dim, key+":"), val)
	}
	tierField := func(key string, t tier) {
		field(key, fmt.Sprintf("%.2f .. %.2f", t.Max, t.Min))
	}

	section("server")
	field("bind", cfg.Server.Bind)

	section("logging")
	field("level", cfg.Logging.Level)
	field("format", cfg.Logging.Format)

	section("catalog")
	if cfg.Catalog.Path == "" {
		field("path", "(embedded)")
	} else {
		field("path", cfg.Catalog.Path)
	}

	section("metrics")
	field("enabled", cfg.Metrics.Enabled)
	field("path", cfg.Metrics.Path)

	c := cfg.Calibration
	section("calibration")
	field("decay_constant", c.Signal.DecayConstant)
	field("channel_width_mhz", c.Signal.ChannelWidth)
	field("min_safe_distance_mhz", c.MinSafeDistance)
	field("close_factor", c.CloseFactor)
	field("crowded_count", c.CrowdedCount)
	field("clustered_count", c.ClusteredCount)
	field("imd_order", c.IMDOrder)

	section("calibration.multipliers")
	tierField("sparse", c.Multipliers.Sparse)
	tierField("clustered", c.Multipliers.Clustered)
	tierField("crowded", c.Multipliers.Crowded)
	tierField("crowded_clustered", c.Multipliers.CrowdedClustered)

	section("calibration.coefficients")
	field("sparse", fmt.Sprintf("direct %.0f, imd %.0f", c.Coefficients.Sparse.Direct, c.Coefficients.Sparse.IMD))
	field("clustered", fmt.Sprintf("direct %.0f, imd %.0f", c.Coefficients.Clustered.Direct, c.Coefficients.Clustered.IMD))

	section("calibration.risk")
	field("critical", c.Risk.Critical)
	field("high", c.Risk.High)
	field("medium", c.Risk.Medium)
	field("low", c.Risk.Low)

	section("calibration.overlap")
	field("full", c.Overlap.Full)
	field("partial", c.Overlap.Partial)
	field("close", c.Overlap.Close)

	fmt.Fprintln(stdout)

	return nil
}

// ConfigList shows the named profiles the daemon can reload into.
func ConfigList(baseURL string, jsonOutput bool) error {
	var resp struct {
		ConfigDir string `json:"config_dir"`
		Profiles  []struct {
			Name       string    `json:"name"`
			Path       string    `json:"path"`
			Size       int64     `json:"size"`
			ModifiedAt time.Time `json:"modified_at"`
		} `json:"profiles"`
	}
	if err := getJSON(baseURL, "/api/config/profiles", nil, &resp); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(resp)
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  CONFIG PROFILES"))
	fmt.Fprintf(stdout, "  %s %s\n\n", colorize(dim, "dir:"), resp.ConfigDir)
	if len(resp.Profiles) == 0 {
		fmt.Fprintln(stdout, colorize(dim, "  no profiles found"))
		fmt.Fprintln(stdout)
		return nil
	}

	t := newTable("  ", "Name", "Size", "Modified")
	for _, p := range resp.Profiles {
		t.row(p.Name, formatBytes(p.Size), p.ModifiedAt.Local().Format("2006-01-02 15:04"))
	}
	t.flush()
	fmt.Fprintln(stdout)
	return nil
}
