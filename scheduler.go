package cullthrottle

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/boatbomber/CullThrottle/internal/dimension"
	"github.com/boatbomber/CullThrottle/internal/distance"
	"github.com/boatbomber/CullThrottle/internal/frustum"
	"github.com/boatbomber/CullThrottle/internal/handle"
	"github.com/boatbomber/CullThrottle/internal/ingest"
	"github.com/boatbomber/CullThrottle/internal/metrics"
	"github.com/boatbomber/CullThrottle/internal/obslog"
	"github.com/boatbomber/CullThrottle/internal/pqueue"
	"github.com/boatbomber/CullThrottle/internal/registry"
	"github.com/boatbomber/CullThrottle/internal/voxel"
)

// Re-exported dimension-package types, so callers implement a DimensionAdapter
// without importing an internal package directly.
type (
	DimensionAdapter = dimension.Adapter
	DimensionKind    = dimension.Kind
	Pose             = dimension.Pose
	HalfExtents      = dimension.HalfExtents
	Observer         = dimension.Observer
	AdapterTable     = dimension.Table
	ReaderSet        = dimension.ReaderSet
)

// DimensionKind variants, per spec.md §4.3.
const (
	RigidBody     = dimension.RigidBody
	Composite     = dimension.Composite
	Bone          = dimension.Bone
	Attachment    = dimension.Attachment
	Beam          = dimension.Beam
	RangedEmitter = dimension.RangedEmitter
	RangedSound   = dimension.RangedSound
)

// P0Threshold is the priority boundary below which an update is treated as
// urgent ("p0") by the iterator's budget rules (spec.md §4.6).
const P0Threshold = 0.90

// CameraSource supplies the current camera pose and projection parameters.
type CameraSource interface {
	Pose() Pose
	FOVDegrees() float64
	Aspect() float64
}

// VisibleObject is one entry of the snapshot GetVisibleObjects returns.
type VisibleObject struct {
	Object   Handle
	Priority float64
}

// Update is one (object, elapsed-since-last-update, distance) tuple
// yielded by IterateObjectsToUpdate.
type Update struct {
	Object    Handle
	DeltaTime time.Duration
	Distance  float64
}

// Scheduler runs the per-frame visibility and update-priority pipeline
// described by spec.md §4.6. Call BeginFrame once per rendered frame,
// before rendering begins; then call GetVisibleObjects and/or
// IterateObjectsToUpdate as needed.
type Scheduler struct {
	cfg     Config
	camera  CameraSource
	adapter DimensionAdapter
	clock   Clock
	logger  obslog.Logger
	rng     *rand.Rand

	grid     *voxel.Grid
	registry *registry.Registry
	cache    *frustum.VisibilityCache
	visible  *pqueue.Queue
	distance *distance.Controller

	skippedSearchMetric *metrics.RollingMean
	skippedIngestMetric *metrics.RollingMean
	objectDeltaMetric   *metrics.RollingMean

	events *events

	visibleSet map[handle.Handle]struct{}

	frame               uint64
	ranThisFrame        bool
	batchHeapified      bool
	lastScratchShrinkAt time.Time
}

// New constructs a Scheduler. camera and adapter are required; clock
// defaults to SystemClock if nil.
func New(camera CameraSource, adapter DimensionAdapter, clock Clock, cfg Config) (*Scheduler, error) {
	if camera == nil {
		return nil, fmt.Errorf("cullthrottle: camera is required")
	}
	if adapter == nil {
		return nil, fmt.Errorf("cullthrottle: adapter is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock()
	}

	grid := voxel.New()
	s := &Scheduler{
		cfg:                 cfg,
		camera:              camera,
		adapter:             adapter,
		clock:               clock,
		logger:              obslog.Nop(),
		rng:                 rand.New(rand.NewSource(1)),
		grid:                grid,
		cache:               frustum.NewVisibilityCache(),
		visible:             pqueue.New(),
		distance:            distance.New(cfg.RenderDistanceTarget),
		skippedSearchMetric: metrics.NewRollingMean(cfg.MetricsWindow),
		skippedIngestMetric: metrics.NewRollingMean(cfg.MetricsWindow),
		objectDeltaMetric:   metrics.NewRollingMean(cfg.MetricsWindow),
		events:              newEvents(),
		visibleSet:          make(map[handle.Handle]struct{}),
	}
	s.registry = registry.New(adapter, cfg.VoxelSize, grid, s.rng, clock, s.logger)
	s.registry.SetCameraPos(camera.Pose().Position)
	return s, nil
}

// SetLogger installs a diagnostics sink. A nil logger restores the no-op
// default.
func (s *Scheduler) SetLogger(l obslog.Logger) {
	if l == nil {
		l = obslog.Nop()
	}
	s.logger = l
}

// AddObject registers a non-physics-driven object, resolved through the
// DimensionAdapter. Returns ErrNotAddable if the adapter cannot classify
// it, or cannot resolve its pose or bounds.
func (s *Scheduler) AddObject(obj any) (Handle, error) {
	return s.add(obj, false)
}

// AddPhysicsObject registers an object whose pose changes too frequently
// to rely on change notifications alone; it is additionally polled via a
// round-robin sweep each frame (spec.md §4.3).
func (s *Scheduler) AddPhysicsObject(obj any) (Handle, error) {
	return s.add(obj, true)
}

func (s *Scheduler) add(obj any, physics bool) (Handle, error) {
	h, err := s.registry.Add(obj, physics)
	if err != nil {
		return handle.Invalid, fmt.Errorf("%w: %v", ErrNotAddable, err)
	}
	s.events.added.fire(h, s.logger)
	return h, nil
}

// RemoveObject unregisters h: disconnects its observer, evicts it from
// every voxel, and cancels any pending deferred voxel changes.
func (s *Scheduler) RemoveObject(h Handle) {
	s.registry.Remove(h)
	s.visible.Remove(h)
	delete(s.visibleSet, h)
	s.events.removed.fire(h, s.logger)
}

// BeginFrame marks the start of a new render frame. Call this once per
// frame, before rendering begins. When ComputeVisibilityOnlyOnDemand is
// disabled, BeginFrame runs the scheduler pipeline immediately; when
// enabled and no ObjectEnteredView/ObjectExitedView listener is attached,
// it only advances the frame boundary and defers the run until
// GetVisibleObjects or IterateObjectsToUpdate is next called.
func (s *Scheduler) BeginFrame() {
	s.frame++
	s.ranThisFrame = false
	s.batchHeapified = false
	if !s.shouldDeferRun() {
		s.runFrame()
		s.ranThisFrame = true
	}
}

func (s *Scheduler) shouldDeferRun() bool {
	if !s.cfg.ComputeVisibilityOnlyOnDemand {
		return false
	}
	return !s.events.entered.hasListeners() && !s.events.exited.hasListeners()
}

func (s *Scheduler) ensureRanThisFrame() {
	if s.ranThisFrame {
		return
	}
	s.runFrame()
	s.ranThisFrame = true
}

// runFrame is the seven-step per-frame pipeline: drain deferred voxel
// updates, poll physics objects, run the frustum search, ingest visible
// objects into the priority queue, detect visibility exits, adjust the
// render distance, and periodically shrink scratch buffers.
func (s *Scheduler) runFrame() {
	now := s.clock.Now()
	cameraPose := s.camera.Pose()
	s.registry.SetCameraPos(cameraPose.Position)

	// Each frame's incoming batch must reflect only this frame's visible
	// candidates, not every prior frame's that IterateObjectsToUpdate never
	// drained.
	s.visible.ClearIncomingBatch()

	s.registry.DrainVoxelUpdates(now.Add(s.cfg.VoxelUpdateBudget))
	s.registry.PollPhysics(now.Add(s.cfg.PhysicsPollBudget))

	fov := s.camera.FOVDegrees()
	aspect := s.camera.Aspect()
	renderDistance := frustum.EffectiveRenderDistance(fov, s.distance.Current())
	fr := frustum.Derive(cameraPose.Position, cameraPose.Orientation, fov, aspect, renderDistance)

	searchStart := s.clock.Now()
	searchResult := frustum.Search(frustum.Params{
		Frustum:     fr,
		Grid:        s.grid,
		Cache:       s.cache,
		VoxelSize:   s.cfg.VoxelSize,
		GraceWindow: s.cfg.GraceWindow,
		FrameNow:    now,
		Deadline:    searchStart.Add(s.cfg.SearchTimeBudget),
		Clock:       s.clock,
		Rng:         s.rng,
	})
	searchDuration := s.clock.Now().Sub(searchStart)

	ingestStart := s.clock.Now()
	ingestResult := ingest.Run(ingest.Params{
		VisibleVoxels:    searchResult.Visible,
		Grid:             s.grid,
		Registry:         s.registry,
		CameraPos:        cameraPose.Position,
		FOVDegrees:       fov,
		RenderDistance:   renderDistance,
		BestRefreshRate:  s.cfg.BestRefreshRate,
		WorstRefreshRate: s.cfg.WorstRefreshRate,
		FrameNow:         now,
		FrameTick:        s.frame,
		Deadline:         ingestStart.Add(s.cfg.IngestTimeBudget),
		Clock:            s.clock,
		Weights: ingest.Weights{
			ScreenSize: s.cfg.PriorityWeightScreenSize,
			Refresh:    s.cfg.PriorityWeightRefresh,
			Distance:   s.cfg.PriorityWeightDistance,
		},
		Queue: s.visible,
	})
	ingestDuration := s.clock.Now().Sub(ingestStart)

	for _, h := range ingestResult.EnteredView {
		s.visibleSet[h] = struct{}{}
		s.events.entered.fire(h, s.logger)
	}

	// Exit detection only needs to scan last frame's visible set, not every
	// registered object (spec.md §3's visibleNow set), since ingest.Run
	// stamps rec.VisibleNow on every object it still finds visible this
	// frame.
	for h := range s.visibleSet {
		rec, ok := s.registry.Get(h)
		if ok && rec.VisibleNow.Equal(now) {
			continue
		}
		delete(s.visibleSet, h)
		if ok {
			rec.VisibleNow = time.Time{}
		}
		s.events.exited.fire(h, s.logger)
	}

	s.skippedSearchMetric.Push(float64(searchResult.SkippedSearch))
	s.skippedIngestMetric.Push(float64(ingestResult.SkippedIngest))
	if s.cfg.DynamicRenderDistance {
		refreshMidpoint := (s.cfg.BestRefreshRate + s.cfg.WorstRefreshRate) / 2
		s.distance.Adjust(distance.Inputs{
			AvgSkippedIngest: s.skippedIngestMetric.Mean(),
			AvgSkippedSearch: s.skippedSearchMetric.Mean(),
			AvgObjectDelta:   s.objectDeltaMetric.Mean(),
			SearchDuration:   searchDuration.Seconds(),
			IngestDuration:   ingestDuration.Seconds(),
			SearchBudget:     s.cfg.SearchTimeBudget.Seconds(),
			IngestBudget:     s.cfg.IngestTimeBudget.Seconds(),
			BestRefreshRate:  s.cfg.BestRefreshRate.Seconds(),
			RefreshMidpoint:  refreshMidpoint.Seconds(),
		})
	}

	if now.Sub(s.lastScratchShrinkAt) >= s.cfg.ScratchShrinkInterval {
		s.lastScratchShrinkAt = now
		s.visible.ShrinkIncomingBatch()
	}
}

// GetVisibleObjects returns a point-in-time snapshot of the currently
// staged incoming batch: (object, priority) pairs for everything the
// frustum search and ingest pass found visible this frame, before the
// priority queue has been heapified.
func (s *Scheduler) GetVisibleObjects() []VisibleObject {
	s.ensureRanThisFrame()
	staged := s.visible.IncomingBatchSnapshot()
	out := make([]VisibleObject, len(staged))
	for i, e := range staged {
		out[i] = VisibleObject{Object: e.Item, Priority: e.Priority}
	}
	return out
}

// IterateObjectsToUpdate returns an iterator yielding (object, elapsed,
// distance) tuples for objects worth refreshing this frame, most urgent
// first, paced by UpdateTimeBudget. Range over the result with a
// for-range loop; breaking out of the loop early is safe and clears any
// remaining queued work for this frame. ctx may be nil.
func (s *Scheduler) IterateObjectsToUpdate(ctx context.Context) func(func(Update) bool) {
	return func(yield func(Update) bool) {
		s.ensureRanThisFrame()
		if !s.batchHeapified {
			s.visible.EnqueueIncomingBatch()
			s.batchHeapified = true
		}

		iterStart := s.clock.Now()
		budget := s.cfg.UpdateTimeBudget
		p0Budget := time.Duration(float64(budget) * 1.15)
		if s.cfg.StrictlyEnforceWorstRefreshRate {
			p0Budget = time.Duration(int64(1) << 62) // effectively unbounded
		}

		for !s.visible.IsEmpty() {
			if ctx != nil {
				select {
				case <-ctx.Done():
					s.visible.Clear()
					return
				default:
				}
			}

			h, priority := s.visible.Dequeue()
			effectiveBudget := budget
			if priority < P0Threshold {
				effectiveBudget = p0Budget
			}
			if s.clock.Now().Sub(iterStart) >= effectiveBudget {
				s.visible.Clear()
				return
			}

			rec, ok := s.registry.Get(h)
			if !ok {
				continue // MissingObjectRecord: removed mid-frame, skip silently
			}

			dt := iterStart.Sub(rec.LastUpdateClock)
			rec.LastUpdateClock = iterStart
			if dt > 0 && dt < time.Second {
				s.objectDeltaMetric.Push(dt.Seconds())
			}

			if !yield(Update{Object: h, DeltaTime: dt, Distance: rec.Distance}) {
				s.visible.Clear()
				return
			}
		}
	}
}

// SetVoxelSize changes the grid's cell size and rebuilds it in place. The
// frustum visibility cache is reset too, since its keys' world meaning
// changes along with the voxel size.
func (s *Scheduler) SetVoxelSize(size float64) error {
	if size <= 0 {
		return fmt.Errorf("cullthrottle: voxel size must be positive")
	}
	s.cfg.VoxelSize = size
	s.registry.SetVoxelSize(size)
	s.cache.Reset()
	return nil
}

// SetRenderDistanceTarget changes the target render distance the dynamic
// controller widens and narrows around. The frustum visibility cache is
// reset too, since the frustum's far-plane geometry shifts along with it.
func (s *Scheduler) SetRenderDistanceTarget(d float64) error {
	if d <= 0 {
		return fmt.Errorf("cullthrottle: render distance target must be positive")
	}
	s.cfg.RenderDistanceTarget = d
	s.distance.SetTarget(d)
	s.cache.Reset()
	return nil
}

// SetTimeBudgets overrides the per-frame time budgets for the search,
// ingest, and update-iteration phases.
func (s *Scheduler) SetTimeBudgets(search, ingestBudget, update time.Duration) error {
	if search < 0 || ingestBudget < 0 || update < 0 {
		return fmt.Errorf("cullthrottle: time budgets must be non-negative")
	}
	s.cfg.SearchTimeBudget = search
	s.cfg.IngestTimeBudget = ingestBudget
	s.cfg.UpdateTimeBudget = update
	return nil
}

// SetRefreshRates sets the best/worst update cadence. Values greater than
// 2 are interpreted as Hz and inverted to an interval; values at or below
// 2 are interpreted as seconds-between-updates directly.
func (s *Scheduler) SetRefreshRates(best, worst float64) error {
	if best <= 0 || worst <= 0 {
		return fmt.Errorf("cullthrottle: refresh rates must be positive")
	}
	b := refreshRateFromValue(best)
	w := refreshRateFromValue(worst)
	if b > w {
		b, w = w, b
	}
	s.cfg.BestRefreshRate = b
	s.cfg.WorstRefreshRate = w
	return nil
}

// SetComputeVisibilityOnlyOnDemand toggles the on-demand execution mode
// (spec.md §4.6).
func (s *Scheduler) SetComputeVisibilityOnlyOnDemand(v bool) { s.cfg.ComputeVisibilityOnlyOnDemand = v }

// SetStrictlyEnforceWorstRefreshRate toggles unbounded p0 update budgets.
func (s *Scheduler) SetStrictlyEnforceWorstRefreshRate(v bool) {
	s.cfg.StrictlyEnforceWorstRefreshRate = v
}

// SetDynamicRenderDistance toggles the render-distance controller.
func (s *Scheduler) SetDynamicRenderDistance(v bool) { s.cfg.DynamicRenderDistance = v }

// Config returns a copy of the scheduler's current configuration.
func (s *Scheduler) Config() Config { return s.cfg }
