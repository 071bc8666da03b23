package frustum

import (
	"github.com/boatbomber/CullThrottle/internal/voxel"
	"github.com/go-gl/mathgl/mgl64"
)

// volume is an axis-aligned box expressed in inclusive voxel-key bounds.
type volume struct {
	min, max voxel.Key
}

func (v volume) isSingleVoxel() bool { return v.min == v.max }

func (v volume) size() (int32, int32, int32) {
	return v.max.I - v.min.I + 1, v.max.J - v.min.J + 1, v.max.K - v.min.K + 1
}

// split divides v in half along its longest axis, following the same
// longest-axis-at-the-midpoint rule a BVH build uses to pick a split plane.
func (v volume) split() (a, b volume) {
	di, dj, dk := v.size()
	switch {
	case di >= dj && di >= dk:
		mid := v.min.I + di/2
		a = volume{min: v.min, max: voxel.Key{I: mid, J: v.max.J, K: v.max.K}}
		b = volume{min: voxel.Key{I: mid + 1, J: v.min.J, K: v.min.K}, max: v.max}
	case dj >= di && dj >= dk:
		mid := v.min.J + dj/2
		a = volume{min: v.min, max: voxel.Key{I: v.max.I, J: mid, K: v.max.K}}
		b = volume{min: voxel.Key{I: v.min.I, J: mid + 1, K: v.min.K}, max: v.max}
	default:
		mid := v.min.K + dk/2
		a = volume{min: v.min, max: voxel.Key{I: v.max.I, J: v.max.J, K: mid}}
		b = volume{min: voxel.Key{I: v.min.I, J: v.min.J, K: mid + 1}, max: v.max}
	}
	return a, b
}

// worldAABB converts the voxel-key bounds into a world-space center and
// half-extents for the frustum box test.
func (v volume) worldAABB(voxelSize float64) (center, halfExtents mgl64.Vec3) {
	minX, minY, minZ := float64(v.min.I)*voxelSize, float64(v.min.J)*voxelSize, float64(v.min.K)*voxelSize
	maxX, maxY, maxZ := float64(v.max.I+1)*voxelSize, float64(v.max.J+1)*voxelSize, float64(v.max.K+1)*voxelSize
	center = mgl64.Vec3{(minX + maxX) / 2, (minY + maxY) / 2, (minZ + maxZ) / 2}
	halfExtents = mgl64.Vec3{(maxX - minX) / 2, (maxY - minY) / 2, (maxZ - minZ) / 2}
	return center, halfExtents
}

// initialOctants splits v into its 8 octants along each axis' midpoint.
// The caller must only invoke this when every axis spans more than one
// voxel; otherwise the resulting ranges can be empty.
func initialOctants(v volume) [8]volume {
	di, dj, dk := v.size()
	midI := v.min.I + di/2
	midJ := v.min.J + dj/2
	midK := v.min.K + dk/2

	ri := [2][2]int32{{v.min.I, midI}, {midI + 1, v.max.I}}
	rj := [2][2]int32{{v.min.J, midJ}, {midJ + 1, v.max.J}}
	rk := [2][2]int32{{v.min.K, midK}, {midK + 1, v.max.K}}

	var out [8]volume
	idx := 0
	for _, ii := range ri {
		for _, jj := range rj {
			for _, kk := range rk {
				out[idx] = volume{
					min: voxel.Key{I: ii[0], J: jj[0], K: kk[0]},
					max: voxel.Key{I: ii[1], J: jj[1], K: kk[1]},
				}
				idx++
			}
		}
	}
	return out
}
