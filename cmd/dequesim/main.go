// Command dequesim replays deque workload scenarios and prints how many
// chunks the deque holds after every step.
//
// Usage:
//
//	dequesim -scenario scenarios/spike.toml [-log-level debug] [-log-format json]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lucasgdosr/deque/v2/internal/workload"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("dequesim", flag.ContinueOnError)
	var (
		scenarios stringList
		level     = fs.String("log-level", "info", "log level: debug, info, warn, error")
		format    = fs.String("log-format", "console", "log format: console or json")
	)
	fs.Var(&scenarios, "scenario", "scenario file (.toml, .yaml or .yml), may be repeated")
	if err := fs.Parse(args); err != nil {
		return err
	}
	scenarios = append(scenarios, fs.Args()...)
	if len(scenarios) == 0 {
		fs.Usage()
		return fmt.Errorf("no scenario given")
	}

	log, err := newLogger(*level, *format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, path := range scenarios {
		sc, err := workload.Load(path)
		if err != nil {
			return err
		}
		reports, err := workload.Run(ctx, sc, log)
		printReports(out, sc.Name, reports)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	return nil
}

func printReports(out io.Writer, name string, reports []workload.Report) {
	fmt.Fprintf(out, "== %s\n", name)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "step\top\tlen\tchunks\tspare\tdirectory\tpeak live\trefused\telapsed\t")
	for _, r := range reports {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t\n",
			r.Step, r.Op, r.Stats.Len, r.Stats.AllocatedChunks, r.Stats.SpareChunks,
			r.Stats.DirectoryLen, r.Allocator.PeakLive, r.AllocFailures, r.Elapsed)
	}
	w.Flush()
}

// stringList collects a repeated flag.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint(*s) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func newLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncoderConfig.ConsoleSeparator = "  "
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}
