// Package frustum derives the camera's view volume and tests voxel boxes
// against it. Plane math runs on mgl64.Vec3/mgl64.Quat.
package frustum

import (
	"math"

	"github.com/boatbomber/CullThrottle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// Plane is a half-space boundary: points p with (p-Point)·Normal <= 0 are
// inside.
type Plane struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// Frustum is the camera view volume bounded by left, right, top, bottom,
// and far planes. There is no near plane, per spec.md §4.4.
type Frustum struct {
	Planes     [5]Plane
	CameraPos  mgl64.Vec3
	FarCorners [4]mgl64.Vec3
}

const boxTestEpsilon = 1e-6

// EffectiveRenderDistance scales renderDistance to compensate for a narrow
// field of view, per spec.md §4.4.
func EffectiveRenderDistance(fovDegrees, renderDistance float64) float64 {
	if fovDegrees < 60 {
		return renderDistance * (2 - fovDegrees/60)
	}
	return renderDistance
}

// Derive builds the five frustum planes and far-plane corners for the
// given camera pose, FOV (degrees), aspect ratio, and effective render
// distance.
func Derive(cameraPos mgl64.Vec3, orientation mgl64.Quat, fovDegrees, aspect, renderDistance float64) Frustum {
	forward := orientation.Rotate(mgl64.Vec3{0, 0, -1}).Normalize()
	up := orientation.Rotate(mgl64.Vec3{0, 1, 0}).Normalize()
	right := orientation.Rotate(mgl64.Vec3{1, 0, 0}).Normalize()

	halfVFov := (fovDegrees * math.Pi / 180) / 2
	halfHeight := renderDistance * math.Tan(halfVFov)
	halfWidth := halfHeight * aspect

	farCenter := cameraPos.Add(forward.Mul(renderDistance))
	farTopLeft := farCenter.Add(up.Mul(halfHeight)).Sub(right.Mul(halfWidth))
	farTopRight := farCenter.Add(up.Mul(halfHeight)).Add(right.Mul(halfWidth))
	farBottomLeft := farCenter.Sub(up.Mul(halfHeight)).Sub(right.Mul(halfWidth))
	farBottomRight := farCenter.Sub(up.Mul(halfHeight)).Add(right.Mul(halfWidth))

	return Frustum{
		Planes: [5]Plane{
			{Point: cameraPos, Normal: inwardNormal(cameraPos, farBottomLeft, farTopLeft)},
			{Point: cameraPos, Normal: inwardNormal(cameraPos, farTopRight, farBottomRight)},
			{Point: cameraPos, Normal: inwardNormal(cameraPos, farTopLeft, farTopRight)},
			{Point: cameraPos, Normal: inwardNormal(cameraPos, farBottomRight, farBottomLeft)},
			{Point: farCenter, Normal: forward},
		},
		CameraPos:  cameraPos,
		FarCorners: [4]mgl64.Vec3{farTopLeft, farTopRight, farBottomLeft, farBottomRight},
	}
}

// inwardNormal returns the unit normal of the plane spanned by origin and
// two far-plane corners. The callers order the corners so the cross product
// points out of the frustum, matching Plane's convention that points with
// (p-Point)·Normal <= 0 are inside.
func inwardNormal(origin, a, b mgl64.Vec3) mgl64.Vec3 {
	ea := a.Sub(origin)
	eb := b.Sub(origin)
	return eb.Cross(ea).Normalize()
}

// BoundingVoxelKeys returns the inclusive min/max voxel.Key range spanning
// the camera position and the four far-plane corners.
func (f Frustum) BoundingVoxelKeys(voxelSize float64) (min, max voxel.Key) {
	minX, minY, minZ := f.CameraPos.X(), f.CameraPos.Y(), f.CameraPos.Z()
	maxX, maxY, maxZ := minX, minY, minZ
	for _, c := range f.FarCorners {
		minX, maxX = math.Min(minX, c.X()), math.Max(maxX, c.X())
		minY, maxY = math.Min(minY, c.Y()), math.Max(maxY, c.Y())
		minZ, maxZ = math.Min(minZ, c.Z()), math.Max(maxZ, c.Z())
	}
	min = voxel.Key{
		I: int32(math.Floor(minX / voxelSize)),
		J: int32(math.Floor(minY / voxelSize)),
		K: int32(math.Floor(minZ / voxelSize)),
	}
	max = voxel.Key{
		I: int32(math.Floor(maxX / voxelSize)),
		J: int32(math.Floor(maxY / voxelSize)),
		K: int32(math.Floor(maxZ / voxelSize)),
	}
	return min, max
}

// TestBox runs the box-vs-frustum test from spec.md §4.4. When
// completelyInsideMode is requested, the second return value reports
// whether the box also satisfies the "fully inside" condition on every
// plane.
func TestBox(f Frustum, center, halfExtents mgl64.Vec3, completelyInsideMode bool) (intersects, completelyInside bool) {
	completelyInside = completelyInsideMode
	for _, p := range f.Planes {
		d := center.Sub(p.Point).Dot(p.Normal)
		r := math.Abs(halfExtents.X()*p.Normal.X()) + math.Abs(halfExtents.Y()*p.Normal.Y()) + math.Abs(halfExtents.Z()*p.Normal.Z())
		if d > r+boxTestEpsilon {
			return false, false
		}
		if completelyInsideMode && d+r > boxTestEpsilon {
			completelyInside = false
		}
	}
	return true, completelyInside
}
