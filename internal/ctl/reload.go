package ctl

import (
	"fmt"
	"strings"
)

// ReloadOptions configures the reload command.
type ReloadOptions struct {
	Profile string
	JSON    bool
}

// Reload tells the daemon to re-read its config file and catalog from disk.
// If Profile is set, the daemon switches to that named profile.
func Reload(baseURL string, opts ReloadOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var body any
	if opts.Profile != "" {
		body = map[string]string{"profile": opts.Profile}
	}

	var result struct {
		OK            bool   `json:"ok"`
		Message       string `json:"message"`
		CatalogSource string `json:"catalog_source"`
		ChannelCount  int    `json:"channel_count"`
	}
	if err := postJSON(baseURL, "/api/reload", body, &result); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(result)
	}

	fmt.Fprintf(stdout, "\n  %s  %s\n", colorize(green, "RELOADED"), result.Message)
	fmt.Fprintf(stdout, "  %s %s (%d channels)\n\n", colorize(dim, "catalog:"), result.CatalogSource, result.ChannelCount)
	return nil
}
