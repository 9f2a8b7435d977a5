package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/config"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/engine"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/procs"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/ui"
)

func main() {
	// Optional .env next to the binary; absence is not an error.
	_ = godotenv.Load()

	cfg := config.FromFlags(os.Args[1:])

	var filter *regexp.Regexp
	if cfg.Filter != "" {
		re, err := regexp.Compile(cfg.Filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "telemon: bad -filter: %v\n", err)
			os.Exit(2)
		}
		filter = re
	}

	eng := engine.New(engine.Options{
		DisableAccel: !cfg.EnableAccel,
		Filter:       filter,
	})

	sortBy := procs.SortKey(cfg.Sort)

	switch {
	case cfg.JSON:
		eng.Init()
		// One interval between baseline and reading so rates are defined.
		time.Sleep(cfg.Interval)
		emit(eng.Snapshot(cfg.Interval, sortBy, cfg.Limit))
	case cfg.JSONStream:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		eng.Init()
		for s := range eng.Stream(ctx, cfg.Interval, sortBy, cfg.Limit) {
			emit(s)
		}
	default:
		if err := ui.RunTUI(cfg, eng); err != nil {
			fmt.Fprintf(os.Stderr, "telemon: %v\n", err)
			os.Exit(1)
		}
	}
}

func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "telemon: encode: %v\n", err)
	}
}
