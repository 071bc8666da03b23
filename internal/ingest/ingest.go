// Package ingest walks the visible voxel list, computes each object's
// refresh priority, and stages it into the visible-object queue's incoming
// batch. Priority tiers follow spec.md §4.5's threshold table, checked top
// to bottom, first match wins — the same tiered-condition shape the
// teacher uses for its own threshold ladders.
package ingest

import (
	"math"
	"time"

	"github.com/boatbomber/CullThrottle/internal/handle"
	"github.com/boatbomber/CullThrottle/internal/pqueue"
	"github.com/boatbomber/CullThrottle/internal/registry"
	"github.com/boatbomber/CullThrottle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// Clock supplies monotonic wall-clock time, mirrored locally so this
// package never needs to import the root package.
type Clock interface {
	Now() time.Time
}

// Weights are the three coefficients of the blended priority tier.
type Weights struct {
	ScreenSize float64
	Refresh    float64
	Distance   float64
}

// Params bundles one frame's ingest inputs.
type Params struct {
	VisibleVoxels    []voxel.Key
	Grid             *voxel.Grid
	Registry         *registry.Registry
	CameraPos        mgl64.Vec3
	FOVDegrees       float64
	RenderDistance   float64
	BestRefreshRate  time.Duration
	WorstRefreshRate time.Duration
	FrameNow         time.Time
	FrameTick        uint64
	Deadline         time.Time
	Clock            Clock
	Weights          Weights
	Queue            *pqueue.Queue
}

// Result is the outcome of one frame's ingest pass.
type Result struct {
	SkippedIngest int
	EnteredView   []handle.Handle
}

// Run walks every object in every visible voxel (in the order Search
// produced them, i.e. ascending distance from the camera), scoring and
// staging each one not already checked this frame. Once the deadline
// passes, remaining voxels are fast-ingested with a synthetic priority
// derived from voxel visit order, preserving rough spatial ordering
// without the per-object math.
func Run(p Params) Result {
	tanHalfFOV := math.Tan(p.FOVDegrees * math.Pi / 360)
	var result Result
	budgetExceeded := pastDeadline(p.Clock, p.Deadline)

	for voxelIdx, key := range p.VisibleVoxels {
		for _, h := range p.Grid.At(key) {
			rec, ok := p.Registry.Get(h)
			if !ok {
				continue // MissingObjectRecord: removed mid-frame, skip silently
			}
			if rec.LastCheckClock == p.FrameTick {
				continue
			}
			rec.LastCheckClock = p.FrameTick

			if budgetExceeded {
				if markVisible(rec, p.FrameNow) {
					result.EnteredView = append(result.EnteredView, h)
				}
				p.Queue.AddToIncomingBatch(h, float64(voxelIdx))
				result.SkippedIngest++
				continue
			}

			distance := rec.Pose.Position.Sub(p.CameraPos).Len()
			if distance > p.RenderDistance {
				continue
			}
			if markVisible(rec, p.FrameNow) {
				result.EnteredView = append(result.EnteredView, h)
			}

			screenSize := (rec.Radius / distance) / tanHalfFOV
			elapsed := p.FrameNow.Sub(rec.LastUpdateClock) + rec.JitterOffset
			pr := priority(screenSize, elapsed, p.BestRefreshRate, p.WorstRefreshRate, distance, p.RenderDistance, p.Weights)
			p.Queue.AddToIncomingBatch(h, pr)
		}

		if !budgetExceeded && pastDeadline(p.Clock, p.Deadline) {
			budgetExceeded = true
		}
	}

	return result
}

func markVisible(rec *registry.Record, now time.Time) (entered bool) {
	entered = rec.VisibleNow.IsZero()
	rec.VisibleNow = now
	return entered
}

func pastDeadline(clock Clock, deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return !clock.Now().Before(deadline)
}
