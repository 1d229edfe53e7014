package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/large-farva/vtx-planner/internal/telemetry"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Filter []string // event types to show (empty = all)
	JSON   bool     // output raw JSON per event
	Count  int      // stop after this many shown events (0 = never)
}

// wsURL rewrites an http(s) base URL to the daemon's WebSocket endpoint.
func wsURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Watch connects to the daemon's WebSocket endpoint and streams events to
// the terminal until ctx is cancelled or the daemon hangs up.
func Watch(ctx context.Context, baseURL string, opts WatchOptions) error {
	target, err := wsURL(baseURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if !opts.JSON {
		fmt.Fprintln(stdout)
		fmt.Fprintf(stdout, "  %s %s\n", colorize(green, "connected"), colorize(dim, target))
		if len(opts.Filter) > 0 {
			fmt.Fprintf(stdout, "  %s %s\n", colorize(dim, "filter:"), colorize(dim, strings.Join(opts.Filter, ", ")))
		}
		fmt.Fprintln(stdout, rule(50))
		fmt.Fprintln(stdout)
	}

	filterSet := make(map[string]bool, len(opts.Filter))
	for _, f := range opts.Filter {
		filterSet[f] = true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		shown := 0
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}

			if len(filterSet) > 0 {
				var ev telemetry.Event
				if err := json.Unmarshal(msg, &ev); err == nil && !filterSet[string(ev.Type)] {
					continue
				}
			}

			if opts.JSON {
				fmt.Fprintln(stdout, string(msg))
			} else {
				renderEvent(msg)
			}

			shown++
			if opts.Count > 0 && shown >= opts.Count {
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		if !opts.JSON {
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, colorize(dim, "  disconnecting..."))
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(1*time.Second),
		)
		return nil
	case <-done:
		return nil
	}
}

// renderEvent parses a JSON event and prints it in a human-friendly format.
// Falls back to indented JSON for unrecognized event types.
func renderEvent(raw []byte) {
	var base telemetry.Event
	if err := json.Unmarshal(raw, &base); err != nil {
		fmt.Fprintf(stdout, "  %s\n", string(raw))
		return
	}
	ts := colorize(dim, formatEventTime(base.TS))

	switch base.Type {
	case telemetry.EventHeartbeat:
		var ev telemetry.Heartbeat
		_ = json.Unmarshal(raw, &ev)
		fmt.Fprintf(stdout, "  %s %s  %s  up %s\n",
			ts,
			colorize(dim, "heartbeat"),
			colorize(stateColor(ev.State), ev.State),
			colorize(dim, formatDuration(time.Duration(ev.UptimeSeconds)*time.Second)),
		)

	case telemetry.EventState:
		var ev telemetry.StateTransition
		_ = json.Unmarshal(raw, &ev)
		fmt.Fprintf(stdout, "  %s %s  %s %s %s\n",
			ts,
			colorize(bold, "STATE"),
			colorize(stateColor(ev.From), ev.From),
			colorize(dim, "->"),
			colorize(stateColor(ev.To), ev.To),
		)

	case telemetry.EventLog:
		var ev telemetry.LogLine
		_ = json.Unmarshal(raw, &ev)
		src := ""
		if ev.Component != "" {
			src = colorize(dim, "["+ev.Component+"] ")
		}
		fmt.Fprintf(stdout, "  %s %s  %s%s\n", ts, formatLogLevel(ev.Level), src, ev.Message)

	case telemetry.EventAnalysis:
		var ev telemetry.Analysis
		_ = json.Unmarshal(raw, &ev)
		verdict := colorize(green, "safe")
		if !ev.SafeSeparation {
			verdict = colorize(red, "unsafe")
		}
		score := fmt.Sprintf("max %.2f%%  %d critical", ev.MaxInterference, ev.CriticalPairs)
		if ev.Kind == "channel" {
			score = fmt.Sprintf("overlap %.2f%%", ev.MaxOverlap)
		}
		fmt.Fprintf(stdout, "  %s %s  %s  %s  %s  %s\n",
			ts,
			colorize(cyan, padRight(ev.Kind, 8)),
			strings.Join(ev.Channels, " "),
			verdict,
			score,
			colorize(dim, fmt.Sprintf("%.1fms %s", ev.DurationMS, shortID(ev.RequestID))),
		)

	default:
		var ev map[string]any
		_ = json.Unmarshal(raw, &ev)
		pretty, err := json.MarshalIndent(ev, "  ", "  ")
		if err != nil {
			fmt.Fprintf(stdout, "  %s\n", string(raw))
			return
		}
		fmt.Fprintf(stdout, "  %s\n", string(pretty))
	}
}

// formatEventTime shortens an RFC 3339 timestamp to local wall-clock time.
func formatEventTime(ts string) string {
	if ts == "" {
		return "        "
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		if len(ts) > 10 {
			return ts[:10]
		}
		return ts
	}
	return t.Local().Format("15:04:05")
}

// formatLogLevel returns a colored, fixed-width log level label.
func formatLogLevel(level string) string {
	switch level {
	case "info":
		return colorize(green, "INFO ")
	case "warn", "warning":
		return colorize(yellow, "WARN ")
	case "error":
		return colorize(red, "ERROR")
	default:
		return padRight(level, 5)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
