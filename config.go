package cullthrottle

import (
	"fmt"
	"time"
)

// Config holds every tunable named across spec.md §4 and §6. Zero-value
// fields are not safe to use directly; start from DefaultConfig and
// override only what you need, matching the teacher's logging.Config/
// DefaultConfig() shape.
type Config struct {
	VoxelSize            float64
	RenderDistanceTarget float64

	SearchTimeBudget  time.Duration
	IngestTimeBudget  time.Duration
	UpdateTimeBudget  time.Duration
	VoxelUpdateBudget time.Duration
	PhysicsPollBudget time.Duration

	BestRefreshRate  time.Duration
	WorstRefreshRate time.Duration

	ComputeVisibilityOnlyOnDemand   bool
	StrictlyEnforceWorstRefreshRate bool
	DynamicRenderDistance           bool

	GraceWindow   time.Duration
	MetricsWindow int

	PriorityWeightScreenSize float64
	PriorityWeightRefresh    float64
	PriorityWeightDistance   float64

	ScratchShrinkInterval time.Duration
}

// DefaultConfig returns the canonical defaults drafted in spec.md §9.
func DefaultConfig() Config {
	return Config{
		VoxelSize:            10,
		RenderDistanceTarget: 150,

		SearchTimeBudget:  800 * time.Microsecond,
		IngestTimeBudget:  time.Millisecond,
		UpdateTimeBudget:  2 * time.Millisecond,
		VoxelUpdateBudget: 50 * time.Microsecond,
		PhysicsPollBudget: 50 * time.Microsecond,

		BestRefreshRate:  refreshRateFromValue(10),
		WorstRefreshRate: refreshRateFromValue(1),

		DynamicRenderDistance: true,

		GraceWindow:   175 * time.Millisecond,
		MetricsWindow: 4,

		PriorityWeightScreenSize: 85,
		PriorityWeightRefresh:    13,
		PriorityWeightDistance:   2,

		ScratchShrinkInterval: 5 * time.Second,
	}
}

func (c Config) validate() error {
	if c.VoxelSize <= 0 {
		return fmt.Errorf("cullthrottle: VoxelSize must be positive")
	}
	if c.RenderDistanceTarget <= 0 {
		return fmt.Errorf("cullthrottle: RenderDistanceTarget must be positive")
	}
	if c.MetricsWindow <= 0 {
		return fmt.Errorf("cullthrottle: MetricsWindow must be positive")
	}
	if c.BestRefreshRate <= 0 || c.WorstRefreshRate <= 0 {
		return fmt.Errorf("cullthrottle: refresh rates must be positive")
	}
	return nil
}

// refreshRateFromValue interprets v as an update interval in seconds if
// v <= 2, or as a refresh rate in Hz (inverted to an interval) if v > 2,
// matching spec.md §6's SetRefreshRates convention.
func refreshRateFromValue(v float64) time.Duration {
	if v > 2 {
		return time.Duration(float64(time.Second) / v)
	}
	return time.Duration(v * float64(time.Second))
}
