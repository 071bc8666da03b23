// Package dimension defines the closed set of external object variants
// CullThrottle can resolve pose and bounds for, and the Adapter interface
// callers implement to plug their own scene graph in. The dispatch-by-kind
// shape follows the teacher's pattern of mapping an external enum to
// behavior through a small lookup table.
package dimension

import "github.com/go-gl/mathgl/mgl64"

// Kind is the closed set of external object variants an Adapter can
// classify.
type Kind int

const (
	RigidBody Kind = iota
	Composite
	Bone
	Attachment
	Beam
	RangedEmitter
	RangedSound
)

func (k Kind) String() string {
	switch k {
	case RigidBody:
		return "RigidBody"
	case Composite:
		return "Composite"
	case Bone:
		return "Bone"
	case Attachment:
		return "Attachment"
	case Beam:
		return "Beam"
	case RangedEmitter:
		return "RangedEmitter"
	case RangedSound:
		return "RangedSound"
	default:
		return "Unknown"
	}
}

// Pose is a rigid transform: world-space position plus orientation.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// HalfExtents are the half-widths of a local-space bounding box.
type HalfExtents struct {
	X, Y, Z float64
}

// Radius returns the half-extents' largest component, used as the object's
// bounding-sphere radius approximation.
func (h HalfExtents) Radius() float64 {
	r := h.X
	if h.Y > r {
		r = h.Y
	}
	if h.Z > r {
		r = h.Z
	}
	return r
}

// Observer disconnects a previously registered change callback.
type Observer interface {
	Disconnect()
}

// Adapter resolves pose, bounds, and change notifications for external
// scene objects. Implementations categorize each object into one of the
// Kind variants and dispatch to the matching reader/observer pair;
// CullThrottle ships no concrete scene-graph binding, per spec.md §6.
type Adapter interface {
	KindOf(obj any) (Kind, bool)
	Pose(obj any) (Pose, bool)
	Bounds(obj any) (HalfExtents, bool)
	Observe(obj any, onChange func()) (Observer, bool)
}
