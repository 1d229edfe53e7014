package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/large-farva/vtx-planner/internal/app"
	"github.com/large-farva/vtx-planner/internal/config"
	"github.com/large-farva/vtx-planner/internal/telemetry"
	"github.com/large-farva/vtx-planner/internal/ws"
)

// capture redirects command output for the duration of a test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func daemon(t *testing.T) string {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	a, err := app.New(app.Options{Logger: logger, Cfg: config.Default()})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Routes())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in       string
		expected Selector
		err      bool
	}{
		{in: "R:1", expected: Selector{Band: "R", Channel: "1"}},
		{in: " r : 8 ", expected: Selector{Band: "R", Channel: "8"}},
		{in: "D:10", expected: Selector{Band: "D", Channel: "10"}},
		{in: "R1", err: true},
		{in: "R:", err: true},
		{in: ":1", err: true},
		{in: "R:1:2", err: true},
	}
	for _, tst := range tests {
		t.Run(tst.in, func(t *testing.T) {
			assert := require.New(t)
			sel, err := ParseSelector(tst.in)
			if tst.err {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tst.expected, sel)
		})
	}

	t.Run("lists", func(t *testing.T) {
		assert := require.New(t)

		sels, err := ParseSelectors([]string{"R:1,R:2", "F:4"}, "5G8")
		assert.NoError(err)
		assert.Len(sels, 3)
		assert.Equal("5G8", sels[2].Range)

		_, err = ParseSelectors(nil, "")
		assert.Error(err)
	})
}

func TestParseFrequencies(t *testing.T) {
	assert := require.New(t)

	fs, err := ParseFrequencies([]string{"5760,5800", "5840"})
	assert.NoError(err)
	assert.Equal([]float64{5760, 5800, 5840}, fs)

	_, err = ParseFrequencies([]string{"58OO"})
	assert.Error(err)
}

func TestCommands(t *testing.T) {
	base := daemon(t)

	t.Run("status", func(t *testing.T) {
		out := capture(t)
		require.NoError(t, Status(base, false))
		require.Contains(t, out.String(), "VTX PLANNER STATUS")
		require.Contains(t, out.String(), "BOOTING")
	})

	t.Run("health", func(t *testing.T) {
		out := capture(t)
		require.NoError(t, Health(base, false))
		require.Contains(t, out.String(), "HEALTHY")
		require.Contains(t, out.String(), "catalog")
	})

	t.Run("version json", func(t *testing.T) {
		assert := require.New(t)
		out := capture(t)

		assert.NoError(VersionInfo(base, true))
		var v map[string]any
		assert.NoError(json.Unmarshal(out.Bytes(), &v))
		assert.Contains(v, "daemon")
	})

	t.Run("config", func(t *testing.T) {
		out := capture(t)
		require.NoError(t, Config(base, false))
		require.Contains(t, out.String(), "min_safe_distance_mhz")
		require.Contains(t, out.String(), "(embedded)")
	})

	t.Run("bands", func(t *testing.T) {
		assert := require.New(t)
		out := capture(t)

		assert.NoError(Bands(base, BandsOptions{Region: "CE", Modulation: "analog"}))
		assert.Contains(out.String(), "ANALOG 5.8GHz")
		assert.Contains(out.String(), "5740 5760 5780 5800")
		assert.NotContains(out.String(), "Race Band")

		assert.Error(Bands(base, BandsOptions{Modulation: "fm"}))
	})

	t.Run("frequency", func(t *testing.T) {
		assert := require.New(t)
		out := capture(t)

		assert.NoError(Frequency(base, FrequencyOptions{Selector: Selector{Band: "R", Channel: "1"}}))
		assert.Contains(out.String(), "5658 MHz")

		err := Frequency(base, FrequencyOptions{Selector: Selector{Band: "Z", Channel: "9"}})
		assert.Error(err)
		assert.Contains(err.Error(), "404")
	})

	t.Run("check", func(t *testing.T) {
		out := capture(t)
		require.NoError(t, Check(base, CheckOptions{Selector: Selector{Band: "F", Channel: "4"}}))
		require.Contains(t, out.String(), "source")
		require.Contains(t, out.String(), "partial_overlap")
	})

	t.Run("analyze", func(t *testing.T) {
		assert := require.New(t)
		out := capture(t)

		sels, err := ParseSelectors([]string{"R:1", "R:2", "R:3"}, "")
		assert.NoError(err)
		assert.NoError(Analyze(base, AnalyzeOptions{Selectors: sels}))
		assert.Contains(out.String(), "UNSAFE")
		assert.Contains(out.String(), "CRITICAL PAIRS")
		assert.Contains(out.String(), "43.44")
	})

	t.Run("analyze unknown channel", func(t *testing.T) {
		capture(t)
		err := Analyze(base, AnalyzeOptions{Selectors: []Selector{{Band: "Z", Channel: "9"}}})
		require.Error(t, err)
		require.Contains(t, err.Error(), "channel not found")
	})

	t.Run("suggest", func(t *testing.T) {
		assert := require.New(t)
		out := capture(t)

		assert.NoError(Suggest(base, SuggestOptions{Selectors: []Selector{{Band: "R", Channel: "1"}}}))
		assert.Contains(out.String(), "A8")
		assert.Contains(out.String(), "R3")
		assert.Contains(out.String(), "B1")
	})

	t.Run("power ratio", func(t *testing.T) {
		out := capture(t)
		require.NoError(t, PowerRatio(base, 5800, 5800, false))
		require.Contains(t, out.String(), "1.000000")
	})

	t.Run("imd", func(t *testing.T) {
		out := capture(t)
		require.NoError(t, IMD(base, []float64{5760, 5800, 5840}, 3, false))
		require.Contains(t, out.String(), "5720  5800  5880")
	})

	t.Run("reload without config path", func(t *testing.T) {
		capture(t)
		err := Reload(base, ReloadOptions{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "no config file path set")
	})
}

func TestHealthUnreachable(t *testing.T) {
	assert := require.New(t)
	out := capture(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.NoError(Health(url, true))
	assert.Contains(out.String(), `"healthy": false`)
}

func TestWatch(t *testing.T) {
	assert := require.New(t)
	out := capture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub := ws.NewHub(nil)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	go func() {
		for hub.Clients() == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		hub.BroadcastJSON(telemetry.Heartbeat{Event: telemetry.NewEvent(telemetry.EventHeartbeat, "vtxd"), State: "READY"})
		hub.BroadcastJSON(telemetry.Analysis{
			Event:           telemetry.NewEvent(telemetry.EventAnalysis, "vtxd"),
			RequestID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
			Kind:            "group",
			Channels:        []string{"analog/5.8GHz/R/1", "analog/5.8GHz/R/2"},
			MaxInterference: 43.44,
			CriticalPairs:   1,
		})
	}()

	err := Watch(ctx, srv.URL, WatchOptions{Filter: []string{"analysis"}, Count: 1})
	assert.NoError(err)
	assert.Contains(out.String(), "group")
	assert.Contains(out.String(), "unsafe")
	assert.Contains(out.String(), "max 43.44%")
	assert.Contains(out.String(), "0f8fad5b")
	assert.NotContains(out.String(), "heartbeat")
}

func TestWSURL(t *testing.T) {
	assert := require.New(t)

	u, err := wsURL("https://planner.local:8443/")
	assert.NoError(err)
	assert.Equal("wss://planner.local:8443/ws", u)

	_, err = wsURL("ftp://planner.local")
	assert.Error(err)
	assert.True(strings.Contains(err.Error(), "unsupported scheme"))
}

func TestRenderChannelEvent(t *testing.T) {
	assert := require.New(t)
	out := capture(t)

	raw, err := json.Marshal(telemetry.Analysis{
		Event:          telemetry.NewEvent(telemetry.EventAnalysis, "vtxd"),
		Kind:           "channel",
		Channels:       []string{"analog/5.8GHz/F/4"},
		SafeSeparation: true,
		MaxOverlap:     13.53,
	})
	assert.NoError(err)

	renderEvent(raw)
	assert.Contains(out.String(), "F/4  safe  overlap 13.53%")
	assert.NotContains(out.String(), "critical")
}
