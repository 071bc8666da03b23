package frustum

import (
	"math/rand"
	"time"

	"github.com/boatbomber/CullThrottle/internal/voxel"
)

// Clock supplies monotonic wall-clock time, mirrored locally so this
// package never needs to import the root package.
type Clock interface {
	Now() time.Time
}

// VisibilityCache tracks the last frame time each voxel was proven visible,
// a short-lived fast path ("grace window") that lets busy frames reuse a
// recent visibility verdict instead of re-testing every voxel.
type VisibilityCache struct {
	lastVisible map[voxel.Key]time.Time
}

// NewVisibilityCache returns an empty VisibilityCache.
func NewVisibilityCache() *VisibilityCache {
	return &VisibilityCache{lastVisible: make(map[voxel.Key]time.Time)}
}

func (c *VisibilityCache) mark(k voxel.Key, now time.Time) { c.lastVisible[k] = now }
func (c *VisibilityCache) clear(k voxel.Key)                { delete(c.lastVisible, k) }

// Reset discards every cached verdict in place, so existing pointers to the
// VisibilityCache keep observing an up-to-date (now empty) map. Callers must
// invoke this whenever a voxel.Key's world meaning changes underneath the
// cache (a voxel-size or render-distance change): an old key can otherwise
// coincide with a now-occupied new key and be reported visible via the
// grace-window fast path without ever running the plane test again.
func (c *VisibilityCache) Reset() {
	c.lastVisible = make(map[voxel.Key]time.Time)
}

func (c *VisibilityCache) recent(k voxel.Key, now time.Time, grace time.Duration) bool {
	t, ok := c.lastVisible[k]
	if !ok {
		return false
	}
	return now.Sub(t) < grace
}

// Result is the outcome of one frame's Search.
type Result struct {
	// Visible holds the visible voxel keys ordered by ascending Manhattan
	// distance from the camera voxel.
	Visible       []voxel.Key
	SkippedSearch int
}

// Params bundles one frame's search inputs.
type Params struct {
	Frustum     Frustum
	Grid        *voxel.Grid
	Cache       *VisibilityCache
	VoxelSize   float64
	GraceWindow time.Duration
	FrameNow    time.Time
	Deadline    time.Time
	Clock       Clock
	Rng         *rand.Rand
}

// accumulator collects this frame's visibility verdicts.
type accumulator struct {
	visible       []voxel.Key
	skippedSearch int
}

func (acc *accumulator) insert(k voxel.Key, cameraVoxel voxel.Key) {
	insertSorted(&acc.visible, k, cameraVoxel)
}

// Search runs the time-budgeted box-vs-frustum partition from spec.md
// §4.4: an iterative LIFO worklist over octant/longest-axis splits of the
// camera's bounding voxel box, with grace-window visibility-cache reuse and
// best-effort stale fallback once the deadline passes.
func Search(p Params) Result {
	cameraVoxel := voxel.FloorKey(p.Frustum.CameraPos.X(), p.Frustum.CameraPos.Y(), p.Frustum.CameraPos.Z(), p.VoxelSize)
	minKey, maxKey := p.Frustum.BoundingVoxelKeys(p.VoxelSize)
	root := volume{min: minKey, max: maxKey}

	worklist := seedWorklist(root, p.Rng)
	acc := &accumulator{}
	overBudget := pastDeadline(p.Clock, p.Deadline)

	for len(worklist) > 0 {
		v := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if overBudget {
			acc.skippedSearch += markStaleBestEffort(v, p.Grid, p.Cache, acc, cameraVoxel)
			continue
		}

		if v.isSingleVoxel() {
			searchSingleVoxel(v.min, p, acc, cameraVoxel)
		} else {
			worklist = searchMultiVoxel(v, p, acc, cameraVoxel, worklist)
		}

		if pastDeadline(p.Clock, p.Deadline) {
			overBudget = true
		}
	}

	return Result{Visible: acc.visible, SkippedSearch: acc.skippedSearch}
}

func seedWorklist(root volume, rng *rand.Rand) []volume {
	di, dj, dk := root.size()
	if di <= 1 || dj <= 1 || dk <= 1 {
		return []volume{root}
	}
	octs := initialOctants(root)
	order := rng.Perm(len(octs))
	out := make([]volume, len(octs))
	for i, idx := range order {
		out[i] = octs[idx]
	}
	return out
}

func searchSingleVoxel(k voxel.Key, p Params, acc *accumulator, cameraVoxel voxel.Key) {
	if len(p.Grid.At(k)) == 0 {
		return
	}
	if p.Cache.recent(k, p.FrameNow, jitteredGrace(p.GraceWindow, p.Rng)) {
		acc.insert(k, cameraVoxel)
		return
	}
	center, halfExtents := volume{min: k, max: k}.worldAABB(p.VoxelSize)
	if intersects, _ := TestBox(p.Frustum, center, halfExtents, false); intersects {
		p.Cache.mark(k, p.FrameNow)
		acc.insert(k, cameraVoxel)
	} else {
		p.Cache.clear(k)
	}
}

func searchMultiVoxel(v volume, p Params, acc *accumulator, cameraVoxel voxel.Key, worklist []volume) []volume {
	present := containedKeys(v, p.Grid)
	if len(present) == 0 {
		return worklist
	}

	if allRecent(present, p.Cache, p.FrameNow, p.GraceWindow, p.Rng) {
		for _, k := range present {
			acc.insert(k, cameraVoxel)
		}
		return worklist
	}

	center, halfExtents := v.worldAABB(p.VoxelSize)
	intersects, completelyInside := TestBox(p.Frustum, center, halfExtents, true)
	if !intersects {
		for _, k := range present {
			p.Cache.clear(k)
		}
		return worklist
	}
	if completelyInside {
		for _, k := range present {
			p.Cache.mark(k, p.FrameNow)
			acc.insert(k, cameraVoxel)
		}
		return worklist
	}

	a, b := v.split()
	if p.Rng.Intn(2) == 0 {
		return append(worklist, a, b)
	}
	return append(worklist, b, a)
}

// markStaleBestEffort handles a worklist entry once the deadline has
// passed: every voxel with a live (possibly stale) cache entry is marked
// visible without re-testing, trading accuracy for bounded work.
func markStaleBestEffort(v volume, grid *voxel.Grid, cache *VisibilityCache, acc *accumulator, cameraVoxel voxel.Key) int {
	present := containedKeys(v, grid)
	for _, k := range present {
		if _, ok := cache.lastVisible[k]; ok {
			acc.insert(k, cameraVoxel)
		}
	}
	return len(present)
}

func containedKeys(v volume, grid *voxel.Grid) []voxel.Key {
	var out []voxel.Key
	for i := v.min.I; i <= v.max.I; i++ {
		for j := v.min.J; j <= v.max.J; j++ {
			for k := v.min.K; k <= v.max.K; k++ {
				key := voxel.Key{I: i, J: j, K: k}
				if len(grid.At(key)) > 0 {
					out = append(out, key)
				}
			}
		}
	}
	return out
}

func allRecent(keys []voxel.Key, cache *VisibilityCache, now time.Time, grace time.Duration, rng *rand.Rand) bool {
	g := jitteredGrace(grace, rng)
	for _, k := range keys {
		if !cache.recent(k, now, g) {
			return false
		}
	}
	return true
}

// jitteredGrace applies a ±5% jitter to the grace window so many voxels
// don't all expire on the exact same frame.
func jitteredGrace(base time.Duration, rng *rand.Rand) time.Duration {
	factor := 0.95 + rng.Float64()*0.10
	return time.Duration(float64(base) * factor)
}

func pastDeadline(clock Clock, deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return !clock.Now().Before(deadline)
}
