// Package app wires together the HTTP API, the WebSocket hub, and the
// interference engine. It owns the daemon's lifecycle and the currently
// loaded configuration and catalog.
package app

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/large-farva/vtx-planner/internal/catalog"
	"github.com/large-farva/vtx-planner/internal/config"
	"github.com/large-farva/vtx-planner/internal/demo"
	"github.com/large-farva/vtx-planner/internal/interference"
	"github.com/large-farva/vtx-planner/internal/metrics"
	"github.com/large-farva/vtx-planner/internal/telemetry"
	"github.com/large-farva/vtx-planner/internal/ws"
)

const component = "vtxd"

// Daemon states.
const (
	StateBooting   = "BOOTING"
	StateReady     = "READY"
	StateReloading = "RELOADING"
	StateStopping  = "STOPPING"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger     *log.Logger
	Cfg        config.Config
	ConfigPath string
	Bind       string
}

// App is the top-level daemon process.
type App struct {
	log        *log.Logger
	bind       string
	server     *http.Server
	wsHub      *ws.Hub
	metrics    *metrics.Metrics
	startedAt  time.Time
	state      atomic.Value
	heartbeat  time.Duration
	configPath string

	// cfg and engine are replaced together on reload.
	mu     sync.RWMutex
	cfg    config.Config
	engine *interference.Engine
}

// New loads the configured catalog and returns an App in the BOOTING state.
// Call Run to start serving.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	engine, err := buildEngine(opts.Cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		log:        logger,
		bind:       opts.Bind,
		wsHub:      ws.NewHub(logger),
		startedAt:  time.Now(),
		heartbeat:  10 * time.Second,
		configPath: opts.ConfigPath,
		cfg:        opts.Cfg,
		engine:     engine,
	}
	if opts.Cfg.Metrics.Enabled {
		a.metrics = metrics.New()
		a.metrics.CatalogChannels(engine.Catalog().ChannelCount())
	}
	a.state.Store(StateBooting)

	logger.WithFields(log.Fields{
		"catalog":  engine.Catalog().Source(),
		"channels": engine.Catalog().ChannelCount(),
	}).Info("catalog loaded")
	return a, nil
}

func buildEngine(cfg config.Config) (*interference.Engine, error) {
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		c, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return nil, errors.Wrap(err, "load catalog error")
		}
		cat = c
	}
	return interference.New(cat, cfg.Calibration), nil
}

// Routes returns the daemon's HTTP handler.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/status", a.handleStatus)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/config/profiles", a.handleConfigProfiles)
	mux.HandleFunc("/api/data", a.handleData)
	mux.HandleFunc("/api/frequency", a.handleFrequency)
	mux.HandleFunc("/api/interference", a.handleInterference)
	mux.HandleFunc("/api/interference/analyze", a.handleAnalyze)
	mux.HandleFunc("/api/interference/suggest", a.handleSuggest)
	mux.HandleFunc("/api/power-ratio", a.handlePowerRatio)
	mux.HandleFunc("/api/imd", a.handleIMD)
	mux.HandleFunc("/api/reload", a.handleReload)
	mux.Handle("/ws", a.wsHub.Handler())

	cfg := a.getConfig()
	if a.metrics != nil {
		mux.Handle(cfg.Metrics.Path, a.metrics.Handler())
	}
	return mux
}

// Run starts the HTTP server, WebSocket hub, and heartbeat ticker. It blocks
// until the context is cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" {
		bind = a.getConfig().Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	a.server = &http.Server{
		Addr:              bind,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return errors.Wrap(err, "listen error")
	}

	a.log.WithField("bind", bind).Infof("listening on http://%s", bind)

	go a.wsHub.Run(ctx)
	a.transition(StateReady)
	go a.heartbeatLoop(ctx)

	if cfg := a.getConfig(); cfg.Demo.Enabled {
		runner := demo.New(a.wsHub, a.getEngine)
		runner.Interval = time.Duration(cfg.Demo.IntervalSeconds) * time.Second
		runner.GroupSize = cfg.Demo.GroupSize
		runner.Log = a.log.WithField("component", "demo")
		a.log.Info("demo mode enabled")
		go runner.Run(ctx)
	}

	go func() {
		<-ctx.Done()
		a.transition(StateStopping)
		a.log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)
	}()

	return a.server.Serve(ln)
}

func (a *App) getConfig() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) getEngine() *interference.Engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine
}

// swap installs a new configuration and engine atomically.
func (a *App) swap(cfg config.Config, engine *interference.Engine, path string) {
	a.mu.Lock()
	a.cfg = cfg
	a.engine = engine
	a.configPath = path
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.CatalogChannels(engine.Catalog().ChannelCount())
	}
}

func (a *App) currentState() string {
	return a.state.Load().(string)
}

// transition updates the daemon state and broadcasts the change.
func (a *App) transition(newState string) {
	old := a.state.Swap(newState).(string)
	if old == newState {
		return
	}
	a.log.WithFields(log.Fields{"from": old, "to": newState}).Debug("state transition")
	a.wsHub.BroadcastJSON(telemetry.StateTransition{
		Event: telemetry.NewEvent(telemetry.EventState, component),
		From:  old,
		To:    newState,
	})
}

// heartbeatLoop sends a periodic heartbeat event so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(a.heartbeat)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.Heartbeat{
				Event:         telemetry.NewEvent(telemetry.EventHeartbeat, component),
				State:         a.currentState(),
				UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
			})
		}
	}
}

// emitLog pushes a log line to subscribers.
func (a *App) emitLog(level, msg string) {
	a.wsHub.BroadcastJSON(telemetry.LogLine{
		Event:   telemetry.NewEvent(telemetry.EventLog, component),
		Level:   level,
		Message: msg,
	})
}
