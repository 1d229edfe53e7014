// Package telemetry defines the typed events vtxd pushes to WebSocket
// clients. vtxctl watch decodes the same structs.
package telemetry

import "time"

// EventType identifies the kind of WebSocket event.
type EventType string

const (
	EventHeartbeat EventType = "heartbeat"
	EventState     EventType = "state"
	EventLog       EventType = "log"
	EventAnalysis  EventType = "analysis"
)

// Event is the base envelope shared by every event type.
type Event struct {
	Type      EventType `json:"type"`
	TS        string    `json:"ts"`
	Component string    `json:"component,omitempty"`
}

// NowTS returns the current UTC time as an RFC 3339 nano string, matching the
// timestamp format used across all events.
func NowTS() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// NewEvent stamps an envelope with the current time.
func NewEvent(t EventType, component string) Event {
	return Event{Type: t, TS: NowTS(), Component: component}
}

// Heartbeat is sent periodically so clients can detect connectivity and
// monitor daemon uptime.
type Heartbeat struct {
	Event
	State         string `json:"state"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// StateTransition is emitted whenever the daemon moves between operating
// states (e.g. BOOTING -> READY).
type StateTransition struct {
	Event
	From string `json:"from"`
	To   string `json:"to"`
}

// LogLine carries a human-readable log message at a severity level.
type LogLine struct {
	Event
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Analysis summarises one completed analysis. Kind is "group", "channel",
// "suggest", or "demo" for simulated heats. MaxInterference is a composite
// interference percent and is left out for "channel" events, which report
// the worst Gaussian overlap of a band neighbour in MaxOverlap instead.
type Analysis struct {
	Event
	RequestID       string   `json:"request_id"`
	Kind            string   `json:"kind"`
	Channels        []string `json:"channels"`
	MaxInterference float64  `json:"max_interference,omitempty"`
	MaxOverlap      float64  `json:"max_overlap,omitempty"`
	SafeSeparation  bool     `json:"safe_separation"`
	CriticalPairs   int      `json:"critical_pairs"`
	DurationMS      float64  `json:"duration_ms"`
}
