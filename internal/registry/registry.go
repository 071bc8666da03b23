// Package registry owns the object-to-voxel bookkeeping: resolving pose and
// bounds through a DimensionAdapter, tracking which voxels each object
// occupies, and draining the deferred voxel-membership updates that pose
// changes trigger. Nil-receiver-safe accessor style and the swap-with-last
// list removal follow the teacher's world_dimensions.go/
// effects_spatial_index.go conventions.
package registry

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/boatbomber/CullThrottle/internal/dimension"
	"github.com/boatbomber/CullThrottle/internal/handle"
	"github.com/boatbomber/CullThrottle/internal/obslog"
	"github.com/boatbomber/CullThrottle/internal/pqueue"
	"github.com/boatbomber/CullThrottle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// Clock supplies monotonic wall-clock time, mirrored locally so this
// package never needs to import the root package.
type Clock interface {
	Now() time.Time
}

// ErrNotAddable indicates the DimensionAdapter could not resolve a kind,
// pose, or bounding box for an object.
var ErrNotAddable = fmt.Errorf("registry: object not addable")

// Registry tracks every registered object's pose, bounds, and voxel
// membership.
type Registry struct {
	adapter   dimension.Adapter
	voxelSize float64
	grid      *voxel.Grid
	rng       *rand.Rand
	clock     Clock
	logger    obslog.Logger

	records    map[handle.Handle]*Record
	nextHandle handle.Handle

	voxelUpdateQueue *pqueue.Queue

	physicsRoundRobin []handle.Handle
	physicsCursor     int

	cameraPos mgl64.Vec3
}

// New returns an empty Registry backed by grid, which must outlive the
// Registry (the frustum search reads from the same Grid instance).
func New(adapter dimension.Adapter, voxelSize float64, grid *voxel.Grid, rng *rand.Rand, clock Clock, logger obslog.Logger) *Registry {
	return &Registry{
		adapter:          adapter,
		voxelSize:        voxelSize,
		grid:             grid,
		rng:              rng,
		clock:            clock,
		logger:           logger,
		records:          make(map[handle.Handle]*Record),
		voxelUpdateQueue: pqueue.New(),
	}
}

// SetCameraPos updates the camera position used for voxel-update queue
// priority and the cached Euclidean distance field.
func (r *Registry) SetCameraPos(p mgl64.Vec3) { r.cameraPos = p }

// Add resolves obj's kind, pose, and bounds through the adapter and
// registers it. Returns ErrNotAddable if the adapter cannot classify it.
func (r *Registry) Add(obj any, physics bool) (handle.Handle, error) {
	kind, ok := r.adapter.KindOf(obj)
	if !ok {
		return handle.Invalid, fmt.Errorf("%w: adapter could not classify object", ErrNotAddable)
	}
	pose, ok := r.adapter.Pose(obj)
	if !ok {
		return handle.Invalid, fmt.Errorf("%w: adapter could not resolve pose", ErrNotAddable)
	}
	bounds, ok := r.adapter.Bounds(obj)
	if !ok {
		return handle.Invalid, fmt.Errorf("%w: adapter could not resolve bounds", ErrNotAddable)
	}

	r.nextHandle++
	h := r.nextHandle

	rec := &Record{
		Object:           obj,
		Kind:             kind,
		Pose:             pose,
		HalfBounds:       bounds,
		Radius:           bounds.Radius(),
		Distance:         pose.Position.Sub(r.cameraPos).Len(),
		VoxelKeys:        make(map[voxel.Key]struct{}),
		DesiredVoxelKeys: make(map[voxel.Key]bool),
		JitterOffset:     jitterOffset(r.rng),
		IsPhysics:        physics,
	}
	r.records[h] = rec

	if observer, ok := r.adapter.Observe(obj, func() { r.safeOnChange(h) }); ok {
		rec.Observer = observer
	}
	if physics {
		r.physicsRoundRobin = append(r.physicsRoundRobin, h)
	}

	r.recomputeDesiredVoxels(h, rec, true)
	return h, nil
}

// Remove disconnects rec's observer, evicts it from every voxel it occupies,
// and cancels any pending deferred voxel changes.
func (r *Registry) Remove(h handle.Handle) {
	rec, ok := r.records[h]
	if !ok {
		return
	}
	if rec.Observer != nil {
		rec.Observer.Disconnect()
	}
	for k := range rec.VoxelKeys {
		r.grid.Remove(k, h)
	}
	r.voxelUpdateQueue.Remove(h)
	delete(r.records, h)
	if rec.IsPhysics {
		r.removeFromPhysicsList(h)
	}
}

// Get returns the Record for h, if registered.
func (r *Registry) Get(h handle.Handle) (*Record, bool) {
	rec, ok := r.records[h]
	return rec, ok
}

// DrainVoxelUpdates applies deferred voxel-membership changes until the
// queue empties or deadline passes.
func (r *Registry) DrainVoxelUpdates(deadline time.Time) {
	for !r.voxelUpdateQueue.IsEmpty() {
		h, _ := r.voxelUpdateQueue.Dequeue()
		if rec, ok := r.records[h]; ok {
			rec.queuedForVoxelUpdate = false
			r.applyDesired(h, rec)
		}
		if pastDeadline(r.clock, deadline) {
			break
		}
	}
}

// PollPhysics refreshes one round-robin slice of physics-driven objects
// until deadline passes.
func (r *Registry) PollPhysics(deadline time.Time) {
	n := len(r.physicsRoundRobin)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		h := r.physicsRoundRobin[r.physicsCursor]
		r.physicsCursor = (r.physicsCursor + 1) % n
		if rec, ok := r.records[h]; ok {
			r.refresh(h, rec)
		}
		if pastDeadline(r.clock, deadline) {
			break
		}
	}
}

// SetVoxelSize rebuilds the grid in place for the new cell size.
func (r *Registry) SetVoxelSize(size float64) {
	r.voxelSize = size
	r.grid.Reset()
	r.voxelUpdateQueue = pqueue.New()
	for h, rec := range r.records {
		rec.VoxelKeys = make(map[voxel.Key]struct{})
		rec.DesiredVoxelKeys = make(map[voxel.Key]bool)
		rec.queuedForVoxelUpdate = false
		r.recomputeDesiredVoxels(h, rec, true)
	}
}

// refresh re-reads pose and bounds through the adapter and recomputes
// voxel membership, deferred through the voxel-update queue.
func (r *Registry) refresh(h handle.Handle, rec *Record) {
	pose, ok := r.adapter.Pose(rec.Object)
	if !ok {
		return
	}
	bounds, ok := r.adapter.Bounds(rec.Object)
	if !ok {
		return
	}
	rec.Pose = pose
	rec.HalfBounds = bounds
	rec.Radius = bounds.Radius()
	rec.Distance = pose.Position.Sub(r.cameraPos).Len()
	r.recomputeDesiredVoxels(h, rec, false)
}

// safeOnChange is the adapter-facing callback; it recovers from panics in
// case the adapter invokes it synchronously from inside caller code that is
// itself mid-panic-unwind, so a misbehaving adapter cannot corrupt registry
// state.
func (r *Registry) safeOnChange(h handle.Handle) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Log(obslog.SeverityWarn, "dimension observer callback panicked", map[string]any{"recover": v})
		}
	}()
	rec, ok := r.records[h]
	if !ok {
		return
	}
	r.refresh(h, rec)
}

// recomputeDesiredVoxels computes the center voxel (and, if the object's
// radius exceeds voxelSize/8, its 8 bounding-box corner voxels), diffs that
// set against the object's current voxel membership, and either applies
// the diff immediately (on registration and voxel-size changes) or stages
// it in the voxel-update queue for the next DrainVoxelUpdates call.
func (r *Registry) recomputeDesiredVoxels(h handle.Handle, rec *Record, immediate bool) {
	desired := map[voxel.Key]struct{}{}
	center := voxel.FloorKey(rec.Pose.Position.X(), rec.Pose.Position.Y(), rec.Pose.Position.Z(), r.voxelSize)
	desired[center] = struct{}{}

	if rec.Radius > r.voxelSize/8 {
		for _, c := range corners(rec.HalfBounds) {
			world := rec.Pose.Position.Add(rec.Pose.Orientation.Rotate(c))
			desired[voxel.FloorKey(world.X(), world.Y(), world.Z(), r.voxelSize)] = struct{}{}
		}
	}

	rec.DesiredVoxelKeys = make(map[voxel.Key]bool)
	for k := range rec.VoxelKeys {
		if _, ok := desired[k]; ok {
			delete(desired, k) // already satisfied, no change needed
		} else {
			rec.DesiredVoxelKeys[k] = false
		}
	}
	for k := range desired {
		rec.DesiredVoxelKeys[k] = true
	}

	if immediate {
		r.applyDesired(h, rec)
		return
	}
	if len(rec.DesiredVoxelKeys) > 0 && !rec.queuedForVoxelUpdate {
		rec.queuedForVoxelUpdate = true
		r.voxelUpdateQueue.Enqueue(h, manhattan(rec.Pose.Position, r.cameraPos))
	}
}

func (r *Registry) applyDesired(h handle.Handle, rec *Record) {
	for k, insert := range rec.DesiredVoxelKeys {
		if insert {
			r.grid.Insert(k, h)
			rec.VoxelKeys[k] = struct{}{}
		} else {
			r.grid.Remove(k, h)
			delete(rec.VoxelKeys, k)
		}
	}
	rec.DesiredVoxelKeys = make(map[voxel.Key]bool)
}

func (r *Registry) removeFromPhysicsList(h handle.Handle) {
	for i, hh := range r.physicsRoundRobin {
		if hh != h {
			continue
		}
		last := len(r.physicsRoundRobin) - 1
		r.physicsRoundRobin[i] = r.physicsRoundRobin[last]
		r.physicsRoundRobin = r.physicsRoundRobin[:last]
		if r.physicsCursor > i {
			r.physicsCursor--
		} else if r.physicsCursor >= len(r.physicsRoundRobin) && len(r.physicsRoundRobin) > 0 {
			r.physicsCursor = 0
		}
		return
	}
}

func pastDeadline(clock Clock, deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return !clock.Now().Before(deadline)
}

func manhattan(a, b mgl64.Vec3) float64 {
	return math.Abs(a.X()-b.X()) + math.Abs(a.Y()-b.Y()) + math.Abs(a.Z()-b.Z())
}

// corners returns the 8 signed combinations of half's components, the
// local-space corners of the object's bounding box.
func corners(half dimension.HalfExtents) [8]mgl64.Vec3 {
	signs := [2]float64{-1, 1}
	var out [8]mgl64.Vec3
	i := 0
	for _, sx := range signs {
		for _, sy := range signs {
			for _, sz := range signs {
				out[i] = mgl64.Vec3{sx * half.X, sy * half.Y, sz * half.Z}
				i++
			}
		}
	}
	return out
}

// jitterOffset draws a small random skew applied to an object's elapsed-
// since-update measurement, spreading otherwise-synchronized refreshes
// across frames.
func jitterOffset(rng *rand.Rand) time.Duration {
	frac := -2 + rng.Float64()*4 // [-2, 2] milliseconds
	return time.Duration(frac * float64(time.Millisecond))
}
