package cullthrottle

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().validate(); err != nil {
		t.Fatalf("DefaultConfig().validate() = %v, want nil", err)
	}
}

func TestValidateRejectsNonPositiveVoxelSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoxelSize = 0
	if err := cfg.validate(); err == nil {
		t.Fatalf("validate() = nil, want an error for VoxelSize <= 0")
	}
}

func TestValidateRejectsNonPositiveRefreshRates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorstRefreshRate = 0
	if err := cfg.validate(); err == nil {
		t.Fatalf("validate() = nil, want an error for a zero refresh rate")
	}
}

func TestRefreshRateFromValueInterpretsHzAboveTwo(t *testing.T) {
	got := refreshRateFromValue(10)
	want := 100 * time.Millisecond
	if got != want {
		t.Fatalf("refreshRateFromValue(10) = %v, want %v (10 Hz -> 100ms)", got, want)
	}
}

func TestRefreshRateFromValueInterpretsSecondsAtOrBelowTwo(t *testing.T) {
	got := refreshRateFromValue(1)
	want := time.Second
	if got != want {
		t.Fatalf("refreshRateFromValue(1) = %v, want %v (interpreted as a 1s interval)", got, want)
	}
}
