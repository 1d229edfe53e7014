// Vtxd is the VTX channel planning daemon.
//
// It loads configuration and the channel catalog, then serves the planning
// API and the WebSocket event stream. Shutdown is handled gracefully on
// SIGINT or SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/large-farva/vtx-planner/internal/app"
	"github.com/large-farva/vtx-planner/internal/config"
	"github.com/large-farva/vtx-planner/internal/logging"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "/etc/vtxd/vtxd.toml", "Path to config TOML")
		bind       = pflag.String("bind", "", "HTTP bind address (overrides server.bind)")
	)
	pflag.Parse()

	cfg := config.Default()
	path := *configPath
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) && !pflag.CommandLine.Changed("config") {
		// No config at the default location: run on built-in defaults.
		path = ""
	} else {
		c, err := config.Load(path)
		if err != nil {
			log.WithError(err).Fatal("config load failed")
		}
		cfg = c
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.WithError(err).Fatal("logger setup failed")
	}
	logger.WithFields(log.Fields{
		"version": app.Version,
		"config":  path,
	}).Info("starting vtxd")

	a, err := app.New(app.Options{
		Logger:     logger,
		Cfg:        cfg,
		ConfigPath: path,
		Bind:       *bind,
	})
	if err != nil {
		logger.WithError(err).Fatal("vtxd setup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("vtxd failed")
	}

	// Brief pause so in-flight log writes can flush before exit.
	time.Sleep(50 * time.Millisecond)
}
