// Package distance implements the dynamic render-distance controller: a
// small widen/narrow/hold rule driven by rolling performance metrics.
package distance

// Controller tracks the current render distance, clamped to
// [target/3, target*5].
type Controller struct {
	target  float64
	current float64
}

// New returns a Controller starting at target with the current distance
// equal to the target.
func New(target float64) *Controller {
	c := &Controller{target: target, current: target}
	return c
}

// SetTarget updates the target render distance and re-clamps the current
// value.
func (c *Controller) SetTarget(target float64) {
	c.target = target
	c.clamp()
}

// Current returns the controller's present render distance.
func (c *Controller) Current() float64 { return c.current }

// Inputs bundles the measurements one frame contributes to the widen/
// narrow/hold decision.
type Inputs struct {
	AvgSkippedIngest float64
	AvgSkippedSearch float64
	AvgObjectDelta   float64
	SearchDuration   float64
	IngestDuration   float64
	SearchBudget     float64
	IngestBudget     float64
	BestRefreshRate  float64
	RefreshMidpoint  float64
}

// Adjust applies spec.md §4.7's rule and returns the new render distance:
// narrow by 3% of target if the frame showed any sign of falling behind,
// widen by 1.5% of target if it's comfortably ahead, otherwise hold.
func (c *Controller) Adjust(in Inputs) float64 {
	switch {
	case in.AvgSkippedIngest > 0 ||
		in.AvgSkippedSearch > 0 ||
		in.AvgObjectDelta >= in.RefreshMidpoint ||
		in.SearchDuration > in.SearchBudget ||
		in.IngestDuration > in.IngestBudget:
		c.current -= 0.03 * c.target
	case in.AvgObjectDelta <= in.BestRefreshRate:
		c.current += 0.015 * c.target
	}
	c.clamp()
	return c.current
}

func (c *Controller) clamp() {
	min := c.target / 3
	max := c.target * 5
	switch {
	case c.current < min:
		c.current = min
	case c.current > max:
		c.current = max
	}
}
