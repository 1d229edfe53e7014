// Vtxctl is the command-line client for a running vtxd instance. It queries
// the channel catalog, scores channel groups, and streams live events from
// the daemon over HTTP and WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/large-farva/vtx-planner/internal/ctl"
)

func main() {
	var (
		host    = pflag.StringP("host", "H", "http://127.0.0.1:8080", "vtxd URL (e.g. http://192.168.8.1:8080)")
		jsonOut = pflag.Bool("json", false, "Output raw JSON instead of formatted text")
		filter  = pflag.StringSlice("filter", nil, "Event types to show in watch (e.g. --filter state,analysis)")
	)

	// Stop parsing global flags at the first non-flag argument (the command
	// name), so subcommand-specific flags like --range are not rejected.
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if pflag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cmd := pflag.Arg(0)
	subArgs := pflag.Args()[1:]

	var err error
	switch cmd {
	// ── Daemon ────────────────────────────────────────────────────
	case "status":
		err = ctl.Status(*host, *jsonOut)

	case "health":
		err = ctl.Health(*host, *jsonOut)

	case "version":
		err = ctl.VersionInfo(*host, *jsonOut)

	case "config":
		err = ctl.Config(*host, *jsonOut)

	case "config-list":
		err = ctl.ConfigList(*host, *jsonOut)

	case "reload":
		opts := ctl.ReloadOptions{JSON: *jsonOut}
		reloadFlags := pflag.NewFlagSet("reload", pflag.ContinueOnError)
		reloadFlags.StringVar(&opts.Profile, "profile", "", "Switch to a named config profile")
		_ = reloadFlags.Parse(subArgs)
		err = ctl.Reload(*host, opts)

	// ── Catalog ───────────────────────────────────────────────────
	case "bands":
		opts := ctl.BandsOptions{JSON: *jsonOut}
		bandFlags := pflag.NewFlagSet("bands", pflag.ContinueOnError)
		bandFlags.StringVar(&opts.Region, "region", "", "Only bands legal in this region (FCC, CE)")
		bandFlags.StringVar(&opts.Modulation, "modulation", "", "Only analog or digital bands")
		bandFlags.IntVar(&opts.Bandwidth, "bandwidth", 0, "Only bands of this width in MHz")
		_ = bandFlags.Parse(subArgs)
		err = ctl.Bands(*host, opts)

	case "frequency", "check":
		var rng, mod string
		chFlags := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
		chFlags.StringVar(&rng, "range", "", "Frequency range (default 5.8GHz)")
		chFlags.StringVar(&mod, "modulation", "", "analog or digital (default analog)")
		_ = chFlags.Parse(subArgs)
		if chFlags.NArg() != 1 {
			err = fmt.Errorf("%s needs exactly one BAND:CHANNEL", cmd)
			break
		}
		sel, perr := ctl.ParseSelector(chFlags.Arg(0))
		if perr != nil {
			err = perr
			break
		}
		sel.Range = rng
		if cmd == "frequency" {
			err = ctl.Frequency(*host, ctl.FrequencyOptions{Selector: sel, Modulation: mod, JSON: *jsonOut})
		} else {
			err = ctl.Check(*host, ctl.CheckOptions{Selector: sel, Modulation: mod, JSON: *jsonOut})
		}

	// ── Planning ──────────────────────────────────────────────────
	case "analyze":
		var rng, mod string
		anFlags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
		anFlags.StringVar(&rng, "range", "", "Frequency range applied to every channel")
		anFlags.StringVar(&mod, "modulation", "", "analog or digital (default analog)")
		_ = anFlags.Parse(subArgs)
		sels, perr := ctl.ParseSelectors(anFlags.Args(), rng)
		if perr != nil {
			err = perr
			break
		}
		err = ctl.Analyze(*host, ctl.AnalyzeOptions{Selectors: sels, Modulation: mod, JSON: *jsonOut})

	case "suggest":
		opts := ctl.SuggestOptions{JSON: *jsonOut}
		sgFlags := pflag.NewFlagSet("suggest", pflag.ContinueOnError)
		sgFlags.StringVar(&opts.Range, "range", "", "Range to search for alternatives")
		sgFlags.StringVar(&opts.Modulation, "modulation", "", "analog or digital (default analog)")
		_ = sgFlags.Parse(subArgs)
		opts.Selectors, err = ctl.ParseSelectors(sgFlags.Args(), opts.Range)
		if err != nil {
			break
		}
		err = ctl.Suggest(*host, opts)

	case "power-ratio":
		fs, perr := ctl.ParseFrequencies(subArgs)
		if perr != nil {
			err = perr
			break
		}
		if len(fs) != 2 {
			err = fmt.Errorf("power-ratio needs exactly two frequencies")
			break
		}
		err = ctl.PowerRatio(*host, fs[0], fs[1], *jsonOut)

	case "imd":
		order := 3
		imdFlags := pflag.NewFlagSet("imd", pflag.ContinueOnError)
		imdFlags.IntVar(&order, "order", 3, "Highest product order (3 or 5)")
		_ = imdFlags.Parse(subArgs)
		fs, perr := ctl.ParseFrequencies(imdFlags.Args())
		if perr != nil {
			err = perr
			break
		}
		err = ctl.IMD(*host, fs, order, *jsonOut)

	// ── Live streaming ────────────────────────────────────────────
	case "watch":
		count := 0
		watchFlags := pflag.NewFlagSet("watch", pflag.ContinueOnError)
		watchFlags.IntVar(&count, "count", 0, "Exit after this many events")
		_ = watchFlags.Parse(subArgs)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = ctl.Watch(ctx, *host, ctl.WatchOptions{
			Filter: *filter,
			JSON:   *jsonOut,
			Count:  count,
		})
		stop()

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Print(`
  vtxctl: VTX channel planner control CLI

  USAGE
    vtxctl [flags] <command> [command-flags] [args]

  COMMANDS (daemon)
    status          Show daemon state, uptime, and loaded catalog
    health          Check daemon and component health
    version         Show CLI and daemon version information
    config          Show the daemon's running configuration
    config-list     List available config profiles
    reload          Reload configuration and catalog from disk

  COMMANDS (catalog)
    bands           List bands and their channel frequencies
    frequency CH    Show the carrier frequency of BAND:CHANNEL
    check CH        Show how every channel of a band overlaps BAND:CHANNEL

  COMMANDS (planning)
    analyze CH...   Score a group of channels flown together
    suggest CH...   Suggest up to three quiet channels next to a group
    power-ratio F1 F2
                    Show the calibrated power ratio between two frequencies
    imd F...        List intermodulation products of a frequency set

  COMMANDS (live)
    watch           Stream live events from the daemon (Ctrl-C to stop)

  GLOBAL FLAGS
    -H, --host URL      Daemon base URL (default: http://127.0.0.1:8080)
        --json          Output raw JSON instead of formatted text
        --filter TYPE   Event types to show in watch (comma-separated)

  COMMAND FLAGS
    bands:
        --region NAME       FCC or CE
        --modulation MOD    analog or digital
        --bandwidth MHZ     Channel width in MHz

    frequency, check, analyze:
        --range RANGE       Frequency range (default: 5.8GHz)
        --modulation MOD    analog or digital (default: analog)

    suggest:
        --range RANGE       Range to search for alternatives
        --modulation MOD    analog or digital (default: analog)

    imd:
        --order N           Highest product order (default: 3)

    reload:
        --profile NAME      Switch to a named config profile

    watch:
        --count N           Exit after N events

  EXAMPLES
    vtxctl status
    vtxctl bands --region CE
    vtxctl frequency R:1
    vtxctl check F:4
    vtxctl analyze R:1 R:4 R:7
    vtxctl analyze --modulation digital D:1,D:3,D:5
    vtxctl suggest R:1 R:2
    vtxctl power-ratio 5800 5820
    vtxctl imd 5760 5800 5840 --order 5
    vtxctl reload --profile race-day
    vtxctl --filter analysis watch

`)
}
