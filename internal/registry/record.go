package registry

import (
	"time"

	"github.com/boatbomber/CullThrottle/internal/dimension"
	"github.com/boatbomber/CullThrottle/internal/voxel"
)

// Record is the per-object bookkeeping the registry owns, per spec.md §3.
type Record struct {
	Object     any
	Kind       dimension.Kind
	Pose       dimension.Pose
	HalfBounds dimension.HalfExtents
	Radius     float64
	Distance   float64

	VoxelKeys        map[voxel.Key]struct{}
	DesiredVoxelKeys map[voxel.Key]bool // true = insert, false = remove

	LastCheckClock  uint64
	LastUpdateClock time.Time
	VisibleNow      time.Time
	JitterOffset    time.Duration

	Observer  dimension.Observer
	IsPhysics bool

	queuedForVoxelUpdate bool
}
