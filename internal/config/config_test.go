package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := FromFlags(nil)
	if cfg.Interval != time.Second || cfg.Sort != "cpu" || cfg.Limit != 0 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if !cfg.EnableAccel {
		t.Fatal("accelerator probe should default on")
	}
}

func TestSortFallsBackToCPU(t *testing.T) {
	cfg := FromFlags([]string{"-sort", "bogus"})
	if cfg.Sort != "cpu" {
		t.Fatalf("sort = %q, want cpu", cfg.Sort)
	}
}

func TestNegativeLimitMeansNoTruncation(t *testing.T) {
	cfg := FromFlags([]string{"-limit", "-5"})
	if cfg.Limit != 0 {
		t.Fatalf("limit = %d, want 0", cfg.Limit)
	}
}

func TestIntervalFloor(t *testing.T) {
	cfg := FromFlags([]string{"-interval", "1ms"})
	if cfg.Interval != 50*time.Millisecond {
		t.Fatalf("interval = %v, want 50ms floor", cfg.Interval)
	}
}

func TestAccelEnv(t *testing.T) {
	t.Setenv("TELEMON_ACCEL", "0")
	cfg := FromFlags(nil)
	if cfg.EnableAccel {
		t.Fatal("TELEMON_ACCEL=0 should disable the probe")
	}
}
