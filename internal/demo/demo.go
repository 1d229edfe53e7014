// Package demo simulates pilots picking channels so the daemon, CLI, and
// dashboards can be exercised end-to-end without any real clients. Each
// round draws a random group from the loaded catalog, scores it, and
// publishes the result as an analysis event.
package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/large-farva/vtx-planner/internal/catalog"
	"github.com/large-farva/vtx-planner/internal/interference"
	"github.com/large-farva/vtx-planner/internal/telemetry"
)

const component = "demo"

// Publisher receives the simulated events. *ws.Hub satisfies it.
type Publisher interface {
	BroadcastJSON(v any)
}

// Runner publishes a simulated group analysis on a fixed interval.
type Runner struct {
	Hub       Publisher
	Engine    func() *interference.Engine
	Interval  time.Duration
	GroupSize int
	Log       log.FieldLogger

	rng *rand.Rand
}

// New creates a runner drawing four-pilot groups every 30 seconds. engine is
// called every round so reloads are picked up.
func New(hub Publisher, engine func() *interference.Engine) *Runner {
	return &Runner{
		Hub:       hub,
		Engine:    engine,
		Interval:  30 * time.Second,
		GroupSize: 4,
		Log:       log.StandardLogger(),
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
}

// Seed makes the drawn groups reproducible.
func (r *Runner) Seed(seed uint64) {
	r.rng = rand.New(rand.NewPCG(seed, 0x5eed))
}

// Run fires one round immediately, then repeats on the configured interval
// until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.Hub.BroadcastJSON(telemetry.LogLine{
		Event:   telemetry.NewEvent(telemetry.EventLog, component),
		Level:   "info",
		Message: fmt.Sprintf("demo mode active, simulating %d-pilot heats every %s", r.GroupSize, r.Interval),
	})

	if _, err := r.Round(); err != nil {
		r.Log.WithError(err).Warn("demo round failed")
	}

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := r.Round(); err != nil {
				r.Log.WithError(err).Warn("demo round failed")
			}
		}
	}
}

// Round draws one analog 5.8GHz group, scores it, and publishes the
// summary. The returned event is the one that was broadcast.
func (r *Runner) Round() (telemetry.Analysis, error) {
	engine := r.Engine()
	pool := engine.Catalog().Channels(catalog.Analog, catalog.DefaultRange)
	if len(pool) == 0 {
		return telemetry.Analysis{}, fmt.Errorf("no %s %s channels to draw from", catalog.Analog, catalog.DefaultRange)
	}

	n := min(r.GroupSize, len(pool))
	if n < 1 {
		n = 1
	}
	selectors := make([]interference.Selector, 0, n)
	ids := make([]string, 0, n)
	for _, i := range r.rng.Perm(len(pool))[:n] {
		ch := pool[i]
		selectors = append(selectors, interference.Selector{
			Band:       ch.Band,
			Channel:    ch.Number,
			Range:      ch.Range,
			Modulation: ch.Modulation,
		})
		ids = append(ids, ch.ID())
	}

	start := time.Now()
	report, err := engine.AnalyzeGroup(selectors, catalog.Analog)
	if err != nil {
		return telemetry.Analysis{}, err
	}

	ev := telemetry.Analysis{
		Event:           telemetry.NewEvent(telemetry.EventAnalysis, component),
		RequestID:       uuid.NewString(),
		Kind:            component,
		Channels:        ids,
		MaxInterference: report.Analysis.MaxInterference,
		SafeSeparation:  report.Analysis.SafeSeparation,
		CriticalPairs:   len(report.CriticalPairs),
		DurationMS:      float64(time.Since(start).Microseconds()) / 1000,
	}
	r.Hub.BroadcastJSON(ev)
	return ev, nil
}
