package config

import (
	"flag"
	"os"
	"time"
)

// Config carries runtime options for telemon.
type Config struct {
	Interval    time.Duration
	Sort        string
	Limit       int
	Filter      string
	JSON        bool
	JSONStream  bool
	EnableAccel bool
}

func Default() Config {
	return Config{
		Interval:    time.Second,
		Sort:        "cpu",
		Limit:       0,
		Filter:      "",
		JSON:        false,
		JSONStream:  false,
		EnableAccel: true,
	}
}

// FromFlags parses flags and environment overrides.
func FromFlags(args []string) Config {
	cfg := Default()
	fs := flag.NewFlagSet("telemon", flag.ContinueOnError)
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "refresh interval")
	fs.StringVar(&cfg.Sort, "sort", cfg.Sort, "process sort column: cpu|mem")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "process list bound, 0 for no truncation")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "regex filter for process names")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "output one-shot JSON and exit")
	fs.BoolVar(&cfg.JSONStream, "json-stream", cfg.JSONStream, "stream NDJSON until interrupted")
	fs.BoolVar(&cfg.EnableAccel, "accel", cfg.EnableAccel, "probe the native accelerator at startup")
	_ = fs.Parse(args)

	if v := os.Getenv("TELEMON_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("TELEMON_ACCEL"); v == "0" {
		cfg.EnableAccel = false
	}
	if v := os.Getenv("TELEMON_SORT"); v == "cpu" || v == "mem" {
		cfg.Sort = v
	}

	if cfg.Sort != "cpu" && cfg.Sort != "mem" {
		cfg.Sort = "cpu"
	}
	if cfg.Limit < 0 {
		cfg.Limit = 0
	}
	if cfg.Interval < 50*time.Millisecond {
		cfg.Interval = 50 * time.Millisecond
	}
	return cfg
}
