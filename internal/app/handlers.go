package app

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/large-farva/vtx-planner/internal/catalog"
	"github.com/large-farva/vtx-planner/internal/config"
	"github.com/large-farva/vtx-planner/internal/interference"
	"github.com/large-farva/vtx-planner/internal/telemetry"
)

// maxIMDInputs bounds /api/imd, whose work grows with the cube of the input.
const maxIMDInputs = 64

// maxFrequencyMHz is the largest carrier frequency the numeric endpoints
// accept.
const maxFrequencyMHz = 1e6

// parseMHz reads a carrier frequency in MHz. Only finite values in
// (0, maxFrequencyMHz] are accepted.
func parseMHz(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Errorf("invalid frequency %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > maxFrequencyMHz {
		return 0, errors.Errorf("frequency %q must be in (0, %g] MHz", s, maxFrequencyMHz)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Core handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	// If the client asks for JSON, return component-level health checks.
	if r.Header.Get("Accept") == "application/json" {
		a.handleHealthDetailed(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleHealthDetailed(w http.ResponseWriter, _ *http.Request) {
	cat := a.getEngine().Catalog()
	checks := map[string]any{
		"catalog": map[string]any{
			"ok":       cat.ChannelCount() > 0,
			"source":   cat.Source(),
			"channels": cat.ChannelCount(),
		},
	}
	allOK := cat.ChannelCount() > 0

	a.mu.RLock()
	path := a.configPath
	a.mu.RUnlock()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			checks["config_file"] = map[string]any{"ok": false, "error": err.Error()}
			allOK = false
		} else {
			checks["config_file"] = map[string]any{"ok": true, "path": path}
		}
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"healthy": allOK,
		"checks":  checks,
	})
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	cat := a.getEngine().Catalog()

	a.mu.RLock()
	path := a.configPath
	a.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"name":           "vtx-planner",
		"state":          a.currentState(),
		"uptime_seconds": int64(time.Since(a.startedAt).Seconds()),
		"catalog_source": cat.Source(),
		"channel_count":  cat.ChannelCount(),
		"ws_clients":     a.wsHub.Clients(),
		"config_path":    path,
		"metrics":        a.metrics != nil,
	})
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
		"runtime":    runtime.Version(),
	})
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.getConfig())
}

func (a *App) handleConfigProfiles(w http.ResponseWriter, _ *http.Request) {
	profiles, err := config.ListProfiles(config.DefaultConfigDir())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if profiles == nil {
		profiles = []config.ProfileInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"config_dir": config.DefaultConfigDir(),
		"profiles":   profiles,
	})
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (a *App) handleData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f catalog.Filter
	f.Region = q.Get("region")
	if s := q.Get("modulation"); s != "" {
		mod, err := catalog.ParseModulation(s)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Modulation = mod
	}
	if s := q.Get("bandwidth"); s != "" {
		bw, err := strconv.Atoi(s)
		if err != nil {
			jsonError(w, "bandwidth must be an integer", http.StatusBadRequest)
			return
		}
		f.Bandwidth = bw
	}

	writeJSON(w, http.StatusOK, a.getEngine().Catalog().Filter(f))
}

func (a *App) handleFrequency(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	band, channel := q.Get("band"), q.Get("channel")
	if band == "" || channel == "" {
		jsonError(w, "band and channel are required", http.StatusBadRequest)
		return
	}

	mod := catalog.Analog
	if s := q.Get("modulation"); s != "" {
		m, err := catalog.ParseModulation(s)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		mod = m
	}

	f, ok := a.getEngine().Catalog().Frequency(mod, q.Get("range"), band, channel)
	if !ok {
		jsonError(w, "frequency not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"frequency": f,
		"unit":      "MHz",
	})
}

// ---------------------------------------------------------------------------
// Interference
// ---------------------------------------------------------------------------

func (a *App) handleInterference(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	modStr, rng, band, channel := q.Get("modulation"), q.Get("range"), q.Get("band"), q.Get("channel")
	if modStr == "" || rng == "" || band == "" || channel == "" {
		jsonError(w, "modulation, range, band and channel are required", http.StatusBadRequest)
		return
	}
	mod, err := catalog.ParseModulation(modStr)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	report, err := a.getEngine().AnalyzeChannel(mod, rng, band, channel)
	a.countAnalysis("channel", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	overlap, safe := worstNeighbour(report)
	a.publishAnalysis(telemetry.Analysis{
		RequestID:      a.requestID(w),
		Kind:           "channel",
		Channels:       []string{fmt.Sprintf("%s/%s/%s/%s", report.Modulation, report.Range, report.Band, report.Channel)},
		SafeSeparation: safe,
		MaxOverlap:     overlap,
	}, start)
	writeJSON(w, http.StatusOK, report)
}

// channelRef accepts a channel number given either as a JSON string or a
// JSON number.
type channelRef string

func (c *channelRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = channelRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("channel must be a string or a number")
	}
	*c = channelRef(n.String())
	return nil
}

type channelRequest struct {
	Band       string     `json:"band"`
	Channel    channelRef `json:"channel"`
	Range      string     `json:"range"`
	Modulation string     `json:"modulation"`
}

type groupRequest struct {
	Channels   []channelRequest `json:"channels"`
	Modulation string           `json:"modulation"`
	Range      string           `json:"range"`
}

// parse validates the body and converts it to engine selectors.
func (req groupRequest) parse() ([]interference.Selector, catalog.Modulation, error) {
	var mod catalog.Modulation
	if req.Modulation != "" {
		m, err := catalog.ParseModulation(req.Modulation)
		if err != nil {
			return nil, "", err
		}
		mod = m
	}
	if len(req.Channels) == 0 {
		return nil, "", errors.New("channels must not be empty")
	}

	selectors := make([]interference.Selector, len(req.Channels))
	for i, ch := range req.Channels {
		if ch.Band == "" || ch.Channel == "" {
			return nil, "", errors.Errorf("channels[%d]: band and channel are required", i)
		}
		sel := interference.Selector{Band: ch.Band, Channel: string(ch.Channel), Range: ch.Range}
		if ch.Modulation != "" {
			m, err := catalog.ParseModulation(ch.Modulation)
			if err != nil {
				return nil, "", errors.Wrapf(err, "channels[%d]", i)
			}
			sel.Modulation = m
		}
		selectors[i] = sel
	}
	return selectors, mod, nil
}

func decodeGroupRequest(w http.ResponseWriter, r *http.Request) (groupRequest, bool) {
	var req groupRequest
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGroupRequest(w, r)
	if !ok {
		return
	}
	selectors, mod, err := req.parse()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	report, err := a.getEngine().AnalyzeGroup(selectors, mod)
	a.countAnalysis("group", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if a.metrics != nil {
		a.metrics.Group(report.Analysis.MaxInterference, len(report.CriticalPairs))
	}

	ids := make([]string, len(report.Channels))
	for i, ch := range report.Channels {
		ids[i] = ch.ID()
	}
	a.publishAnalysis(telemetry.Analysis{
		RequestID:       a.requestID(w),
		Kind:            "group",
		Channels:        ids,
		MaxInterference: report.Analysis.MaxInterference,
		SafeSeparation:  report.Analysis.SafeSeparation,
		CriticalPairs:   len(report.CriticalPairs),
	}, start)
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleSuggest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeGroupRequest(w, r)
	if !ok {
		return
	}
	selectors, mod, err := req.parse()
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	s, err := a.getEngine().Suggest(selectors, mod, req.Range)
	a.countAnalysis("suggest", err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	ids := make([]string, len(s.Selected))
	for i, ch := range s.Selected {
		ids[i] = ch.ID()
	}
	a.publishAnalysis(telemetry.Analysis{
		RequestID:      a.requestID(w),
		Kind:           "suggest",
		Channels:       ids,
		SafeSeparation: len(s.Alternatives) > 0,
	}, start)
	writeJSON(w, http.StatusOK, s)
}

func (a *App) handlePowerRatio(w http.ResponseWriter, r *http.Request) {
	f1, err1 := parseMHz(r.URL.Query().Get("f1"))
	f2, err2 := parseMHz(r.URL.Query().Get("f2"))
	if err1 != nil || err2 != nil {
		jsonError(w, fmt.Sprintf("f1 and f2 must be frequencies in (0, %g] MHz", maxFrequencyMHz), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"f1":          f1,
		"f2":          f2,
		"separation":  math.Abs(f1 - f2),
		"power_ratio": a.getEngine().PowerRatio(f1, f2),
	})
}

func (a *App) handleIMD(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var freqs []float64
	for _, raw := range q["f"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			f, err := parseMHz(part)
			if err != nil {
				jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
			freqs = append(freqs, f)
		}
	}
	if len(freqs) == 0 {
		jsonError(w, "at least one f is required", http.StatusBadRequest)
		return
	}
	if len(freqs) > maxIMDInputs {
		jsonError(w, fmt.Sprintf("at most %d frequencies are allowed", maxIMDInputs), http.StatusBadRequest)
		return
	}

	order := 3
	if s := q.Get("order"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			jsonError(w, "order must be a non-negative integer", http.StatusBadRequest)
			return
		}
		order = n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"frequencies": freqs,
		"order":       order,
		"products":    a.getEngine().IMDProducts(freqs, order),
	})
}

// ---------------------------------------------------------------------------
// Reload
// ---------------------------------------------------------------------------

func (a *App) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Accept optional profile name in body: {"profile": "race"}
	var body struct {
		Profile string `json:"profile"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	a.mu.RLock()
	loadPath := a.configPath
	a.mu.RUnlock()

	if body.Profile != "" {
		p, err := config.ProfilePath(config.DefaultConfigDir(), body.Profile)
		if err != nil {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		loadPath = p
	}
	if loadPath == "" {
		jsonError(w, "no config file path set", http.StatusInternalServerError)
		return
	}

	a.transition(StateReloading)
	defer a.transition(StateReady)

	newCfg, err := config.Load(loadPath)
	if err == nil {
		var engine *interference.Engine
		engine, err = buildEngine(newCfg)
		if err == nil {
			a.swap(newCfg, engine, loadPath)
		}
	}
	if a.metrics != nil {
		a.metrics.Reload(err == nil)
	}
	if err != nil {
		a.log.WithError(err).WithField("path", loadPath).Error("config reload failed")
		jsonError(w, "config reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	cat := a.getEngine().Catalog()
	a.log.WithFields(log.Fields{
		"path":     loadPath,
		"catalog":  cat.Source(),
		"channels": cat.ChannelCount(),
	}).Info("config reloaded")
	a.emitLog("info", "config reloaded from "+loadPath)

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"message":        "configuration reloaded from " + loadPath,
		"catalog_source": cat.Source(),
		"channel_count":  cat.ChannelCount(),
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// requestID tags the response and returns the new id.
func (a *App) requestID(w http.ResponseWriter) string {
	id := uuid.NewString()
	w.Header().Set("X-Request-Id", id)
	return id
}

// publishAnalysis logs a finished analysis and broadcasts it.
func (a *App) publishAnalysis(ev telemetry.Analysis, start time.Time) {
	ev.Event = telemetry.NewEvent(telemetry.EventAnalysis, component)
	ev.DurationMS = float64(time.Since(start).Microseconds()) / 1000

	a.log.WithFields(log.Fields{
		"request_id":       ev.RequestID,
		"kind":             ev.Kind,
		"channels":         len(ev.Channels),
		"max_interference": ev.MaxInterference,
		"max_overlap":      ev.MaxOverlap,
		"safe":             ev.SafeSeparation,
		"duration_ms":      ev.DurationMS,
	}).Info("analysis complete")
	a.wsHub.BroadcastJSON(ev)
}

func (a *App) countAnalysis(kind string, err error) {
	if a.metrics != nil {
		a.metrics.Analysis(kind, err == nil)
	}
}

// worstNeighbour returns the highest overlap of any other band member and
// whether none of them falls in the full-overlap category.
func worstNeighbour(r *interference.ChannelReport) (float64, bool) {
	worst, safe := 0.0, true
	for _, ch := range r.Channels {
		if ch.Category == interference.OverlapSource {
			continue
		}
		if ch.OverlapPercent > worst {
			worst = ch.OverlapPercent
		}
		if ch.Category == interference.OverlapFull {
			safe = false
		}
	}
	return worst, safe
}

// writeEngineError maps engine errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, interference.ErrChannelNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

// writeJSON encodes v before sending any header, so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("encode response error")
		jsonError(w, "encode response error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{
		"ok":    false,
		"error": msg,
	})
}
