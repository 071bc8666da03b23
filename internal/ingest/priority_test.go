package ingest

import (
	"testing"
	"time"
)

func TestPriorityParkedTierIsDeprioritized(t *testing.T) {
	w := Weights{ScreenSize: 0.85, Refresh: 0.13, Distance: 0.02}
	p := priority(0.5, 5*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 50, 150, w)
	if p < 1000 {
		t.Fatalf("priority() = %v, want a large deprioritizing value for a recently-refreshed object", p)
	}
}

func TestPriorityP0TierStaysUnderThreshold(t *testing.T) {
	w := Weights{ScreenSize: 0.85, Refresh: 0.13, Distance: 0.02}
	p := priority(0.5, 200*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 50, 150, w)
	if p > 0.90 {
		t.Fatalf("priority() = %v, want <= 0.90 for an overdue object", p)
	}
}

func TestPriorityP0TierFavorsLargerScreenSize(t *testing.T) {
	w := Weights{ScreenSize: 0.85, Refresh: 0.13, Distance: 0.02}
	small := priority(0.1, 200*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 50, 150, w)
	large := priority(0.9, 200*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 50, 150, w)
	if large >= small {
		t.Fatalf("priority(large screen) = %v, want < priority(small screen) = %v (more urgent)", large, small)
	}
}

func TestPriorityNearbyTierDominatedByDistance(t *testing.T) {
	w := Weights{ScreenSize: 0.85, Refresh: 0.13, Distance: 0.02}
	near := priority(0.5, 50*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 10, 150, w)
	farther := priority(0.5, 50*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 29, 150, w)
	if near >= farther {
		t.Fatalf("priority(distance=10) = %v, want < priority(distance=29) = %v", near, farther)
	}
	if near != 10.0/30.0 {
		t.Fatalf("priority(distance=10) = %v, want exactly distance/30 = %v", near, 10.0/30.0)
	}
}

func TestPriorityBlendedTierDecreasesWithStaleness(t *testing.T) {
	w := Weights{ScreenSize: 0.85, Refresh: 0.13, Distance: 0.02}
	fresh := priority(0.5, 20*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 50, 150, w)
	staler := priority(0.5, 80*time.Millisecond, 10*time.Millisecond, 100*time.Millisecond, 50, 150, w)
	if staler >= fresh {
		t.Fatalf("priority(staler) = %v, want < priority(fresher) = %v (more urgent as it ages)", staler, fresh)
	}
}
