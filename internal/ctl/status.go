package ctl

import (
	"fmt"
	"strings"
	"time"
)

// StatusResponse mirrors the JSON returned by GET /api/status.
type StatusResponse struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	CatalogSource string `json:"catalog_source"`
	ChannelCount  int    `json:"channel_count"`
	WSClients     int    `json:"ws_clients"`
	ConfigPath    string `json:"config_path"`
	Metrics       bool   `json:"metrics"`
}

// Status fetches the daemon status and prints a formatted summary.
func Status(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s StatusResponse
	if err := getJSON(baseURL, "/api/status", nil, &s); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(s)
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)
	configPath := s.ConfigPath
	if configPath == "" {
		configPath = "(defaults)"
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, header("  VTX PLANNER STATUS"))
	fmt.Fprintln(stdout, rule(38))
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Daemon:"), s.Name)
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "State:"), colorize(stateColor(s.State), s.State))
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Fprintf(stdout, "  %-12s %s (%d channels)\n", colorize(dim, "Catalog:"), s.CatalogSource, s.ChannelCount)
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Config:"), configPath)
	fmt.Fprintf(stdout, "  %-12s %d\n", colorize(dim, "Watchers:"), s.WSClients)
	fmt.Fprintf(stdout, "  %-12s %s\n", colorize(dim, "Host:"), baseURL)
	fmt.Fprintln(stdout)

	return nil
}
