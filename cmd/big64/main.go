// Command big64 writes a huge gradient image in every registered format,
// reads it back and checks two corners. It exits 1 if any format fails.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/enumerate"
	_ "github.com/cocosip/go-image-big64/formats/all"
	"github.com/cocosip/go-image-big64/internal/config"
	"github.com/cocosip/go-image-big64/synth"
	"github.com/cocosip/go-image-big64/verify"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.NewLoader().Load(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "big64:", err)
		return 2
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	table, err := cfg.Capabilities()
	if err != nil {
		logger.Error("loading capabilities", "error", err)
		return 1
	}

	reg := codec.Default()
	en := &enumerate.Enumerator{
		Catalog: reg,
		Only:    cfg.Formats,
		Logger:  logger,
		OnSkip: func(name string, reason error) {
			if errors.Is(reason, enumerate.ErrNoWriter) {
				fmt.Printf("  [skipping %s -- no writer]\n", name)
			}
		},
	}
	for _, name := range en.Unknown() {
		logger.Warn("requested format is not registered", "format", name)
	}

	sweep := &verify.Sweep{
		Verifier: &verify.Verifier{
			Codec:       reg,
			Generator:   synth.Generator{MemoryLimit: cfg.MemoryBudget / 2},
			MemoryLimit: cfg.MemoryBudget,
			Dir:         cfg.Dir,
			Out:         os.Stdout,
			Logger:      logger,
		},
		Capabilities:  table,
		Enumerator:    en,
		MaxResolution: cfg.MaxResolution,
		Jobs:          cfg.Jobs,
		MemoryBudget:  cfg.MemoryBudget,
		Logger:        logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("starting sweep",
		"dir", cfg.Dir,
		"jobs", cfg.Jobs,
		"memory_budget", humanize.IBytes(uint64(cfg.MemoryBudget)))
	fmt.Println("Testing writing huge files in all formats:")

	rep, err := sweep.Run(ctx)
	if err != nil {
		fmt.Println("Sweep aborted:", err)
	}
	fmt.Println("\nDone.")
	fmt.Println(rep.Summary())

	if cfg.ReportPath != "" {
		if werr := rep.WriteFile(cfg.ReportPath); werr != nil {
			logger.Error("writing report", "path", cfg.ReportPath, "error", werr)
			return 1
		}
		logger.Info("report written", "path", cfg.ReportPath, "run_id", rep.RunID)
	}
	return rep.Status.ExitCode()
}
