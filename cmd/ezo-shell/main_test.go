package main

import (
	"testing"
	"time"

	"github.com/hydropath/atlas-ezo/internal/config"
)

func TestPollPeriod(t *testing.T) {
	cfg := config.Default()
	cfg.MQTT.PeriodSeconds = 4

	period, err := pollPeriod(nil, cfg)
	if err != nil {
		t.Fatalf("pollPeriod with no args failed: %v", err)
	}
	if period != 4*time.Second {
		t.Errorf("default period: got %v, want 4s (from period_seconds)", period)
	}

	period, err = pollPeriod([]string{"2.5"}, cfg)
	if err != nil {
		t.Fatalf("pollPeriod(2.5) failed: %v", err)
	}
	if period != 2500*time.Millisecond {
		t.Errorf("explicit period: got %v, want 2.5s", period)
	}

	if _, err := pollPeriod([]string{"soon"}, cfg); err == nil {
		t.Error("expected error for non-numeric seconds")
	}
	if _, err := pollPeriod([]string{"1", "2"}, cfg); err == nil {
		t.Error("expected usage error for extra arguments")
	}
}
