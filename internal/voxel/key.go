package voxel

import "math"

// Key identifies a cubic cell of the voxel grid by its integer coordinates.
type Key struct {
	I, J, K int32
}

// FloorKey returns the Key containing the world-space point (x, y, z) for a
// grid whose cells are voxelSize units wide.
func FloorKey(x, y, z, voxelSize float64) Key {
	return Key{
		I: int32(math.Floor(x / voxelSize)),
		J: int32(math.Floor(y / voxelSize)),
		K: int32(math.Floor(z / voxelSize)),
	}
}

// Manhattan returns the Manhattan distance between two keys, used to order
// the visible-voxel list by proximity to the camera voxel.
func (k Key) Manhattan(other Key) int64 {
	return absDiff(k.I, other.I) + absDiff(k.J, other.J) + absDiff(k.K, other.K)
}

func absDiff(a, b int32) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		return -d
	}
	return d
}
