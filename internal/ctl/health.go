package ctl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Health checks daemon liveness and the component checks behind
// GET /healthz.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	status, body, err := getRaw(baseURL, "/healthz", http.Header{"Accept": {"application/json"}})
	if err != nil {
		if jsonOutput {
			return printJSON(map[string]any{"healthy": false, "url": baseURL, "error": err.Error()})
		}
		return err
	}

	var detail struct {
		Healthy bool                      `json:"healthy"`
		Checks  map[string]map[string]any `json:"checks"`
	}
	_ = json.Unmarshal(body, &detail)
	healthy := status == http.StatusOK

	if jsonOutput {
		return printJSON(map[string]any{"healthy": healthy, "url": baseURL, "checks": detail.Checks})
	}

	fmt.Fprintln(stdout)
	if healthy {
		fmt.Fprintf(stdout, "  %s  vtxd is reachable at %s\n", colorize(green, "HEALTHY"), colorize(dim, baseURL))
	} else {
		fmt.Fprintf(stdout, "  %s  vtxd returned HTTP %d at %s\n", colorize(red, "UNHEALTHY"), status, colorize(dim, baseURL))
	}

	names := make([]string, 0, len(detail.Checks))
	for name := range detail.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check := detail.Checks[name]
		mark := colorize(green, "ok  ")
		if ok, _ := check["ok"].(bool); !ok {
			mark = colorize(red, "FAIL")
		}
		extra := ""
		if e, ok := check["error"].(string); ok {
			extra = e
		} else if src, ok := check["source"].(string); ok {
			extra = src
		} else if p, ok := check["path"].(string); ok {
			extra = p
		}
		fmt.Fprintf(stdout, "    %s %s %s\n", mark, padRight(name, 12), colorize(dim, extra))
	}
	fmt.Fprintln(stdout)

	return nil
}
