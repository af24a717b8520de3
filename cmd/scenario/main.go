package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/integrii/flaggy"
	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"

	"cubetick.dev/internal/config"
	"cubetick.dev/internal/protocol"
	"cubetick.dev/internal/sim/catalogs"
	"cubetick.dev/internal/sim/tuning"
	"cubetick.dev/internal/sim/world"
)

type options struct {
	scenario string
	list     bool
	every    int
	noColor  bool
	logLevel string
	tuning   string
}

func main() {
	opts := options{scenario: "button-line", logLevel: "warn"}
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	flaggy.SetName("scenario")
	flaggy.SetDescription("Runs a built-in physics scenario headless and prints the build layer")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&opts.scenario, "s", "scenario", "Scenario to run ["+strings.Join(names, "|")+"|all]")
	flaggy.Bool(&opts.list, "l", "list", "List scenarios and exit")
	flaggy.Int(&opts.every, "e", "every", "Print the layer every N ticks (0: only at checkpoints)")
	flaggy.Bool(&opts.noColor, "n", "no-color", "Disable colours")
	flaggy.String(&opts.logLevel, "v", "log-level", "Engine log level")
	flaggy.String(&opts.tuning, "t", "tuning", "Path to a tuning.yaml")
	flaggy.Parse()

	au := aurora.NewAurora(!opts.noColor)
	if opts.list {
		for _, s := range scenarios {
			fmt.Printf("%-12s %s\n", au.Green(s.name), s.desc)
		}
		return
	}

	log, err := config.NewLogger(config.LoggingConfig{Level: opts.logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	tune := tuning.Default()
	if opts.tuning != "" {
		if tune, err = tuning.Load(opts.tuning); err != nil {
			fmt.Fprintf(os.Stderr, "scenario: %v\n", err)
			os.Exit(1)
		}
	}
	tune.RandomTicksPerChunk = 0

	var run []scenario
	if opts.scenario == "all" {
		run = scenarios
	} else if s, ok := find(opts.scenario); ok {
		run = []scenario{s}
	} else {
		flaggy.ShowHelpAndExit("unknown scenario " + opts.scenario)
	}

	failed := 0
	for _, s := range run {
		n, err := runScenario(os.Stdout, au, s, tune, opts.every, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scenario %s: %v\n", s.name, err)
			os.Exit(1)
		}
		failed += n
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// rejections prints every edit the world refused.
type rejections struct {
	out io.Writer
	au  aurora.Aurora
}

func (r rejections) WriteTick(e world.TickLogEntry) error {
	for _, ed := range e.Edits {
		if ed.Code != "" {
			fmt.Fprintf(r.out, "  %s tick %d %s %v: %s\n", r.au.Red("rejected"), e.Tick, ed.Edit.Op, ed.Edit.Pos, ed.Code)
		}
	}
	return nil
}

// runScenario plays s on a fresh flat world and returns the number of
// failed checkpoints.
func runScenario(out io.Writer, au aurora.Aurora, s scenario, tune tuning.Tuning, every int, log *zap.Logger) (int, error) {
	w, err := world.New(world.WorldConfig{
		ID:        s.name,
		Width:     width,
		Height:    height,
		Length:    length,
		FlatFloor: layer,
	}, tune, catalogs.Default(), log)
	if err != nil {
		return 0, err
	}
	w.SetTickLogger(rejections{out: out, au: au})

	fmt.Fprintf(out, "%s  %s\n", au.Bold(au.Cyan(s.name)), s.desc)
	var seq uint64
	failed := 0
	for t := 0; t < s.ticks; t++ {
		var envs []world.EditEnvelope
		for _, e := range s.edits[t] {
			seq++
			e.Type = protocol.TypeEdit
			e.ProtocolVersion = protocol.Version
			e.Seq = seq
			envs = append(envs, world.EditEnvelope{ClientID: "scenario", Edit: e})
		}
		tick, _ := w.StepOnce(nil, nil, envs)

		atCheckpoint := false
		for _, p := range s.checkpoints {
			if p.tick != t {
				continue
			}
			if !atCheckpoint {
				printSlice(out, au, w, tick, layer)
				atCheckpoint = true
			}
			if err := p.check(w); err != nil {
				failed++
				fmt.Fprintf(out, "  %s %s: %v\n", au.Red("FAIL"), p.label, err)
			} else {
				fmt.Fprintf(out, "  %s %s\n", au.Green("ok"), p.label)
			}
		}
		if !atCheckpoint && every > 0 && t%every == 0 {
			printSlice(out, au, w, tick, layer)
		}
	}
	m := w.Metrics()
	fmt.Fprintf(out, "  ticks=%d toggles=%d detonations=%d digest=%s\n\n", m.Totals.Ticks, m.Totals.TorchToggles, m.Totals.Detonations, w.Digest()[:12])
	return failed, nil
}
