package ingest

import "time"

// priority implements spec.md §4.5's four-tier refresh priority, lower
// values meaning more urgent:
//
//  1. parked (elapsed <= bestRefreshRate): far in the future, scaled by
//     screen size so bigger objects still sort ahead of smaller ones.
//  2. p0 (elapsed >= worstRefreshRate): overdue; priority <= 0.90 always,
//     the P0Threshold the scheduler's iterator budgets against.
//  3. nearby (distance < 30 world units): distance alone dominates.
//  4. blended: weighted mix of screen size, refresh staleness, and
//     distance, using the canonical 85/13/2 weights by default.
func priority(screenSize float64, elapsed, best, worst time.Duration, distance, renderDistance float64, w Weights) float64 {
	switch {
	case elapsed <= best:
		return (1 - screenSize) * 1e6
	case elapsed >= worst:
		return 0.90 - screenSize
	case distance < 30:
		return distance / 30
	default:
		span := worst - best
		frac := 0.0
		if span > 0 {
			frac = float64(elapsed-best) / float64(span)
		}
		return w.ScreenSize*(1-screenSize) + w.Refresh*(1-frac) + w.Distance*(distance/renderDistance)
	}
}
