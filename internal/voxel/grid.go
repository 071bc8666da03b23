package voxel

import "github.com/boatbomber/CullThrottle/internal/handle"

// Grid is a sparse mapping from voxel Key to the handles of the objects
// occupying that cell. Empty cells are never retained, mirroring the
// teacher's effect-occupancy grid generalized from 2D string-keyed cells to
// 3D integer keys and numeric handles.
type Grid struct {
	cells map[Key][]handle.Handle
}

// New returns an empty Grid.
func New() *Grid {
	return &Grid{cells: make(map[Key][]handle.Handle)}
}

// Insert adds obj to the voxel at key. Callers (internal/registry) are
// responsible for not inserting the same (key, obj) pair twice.
func (g *Grid) Insert(key Key, obj handle.Handle) {
	g.cells[key] = append(g.cells[key], obj)
}

// Remove drops obj from the voxel at key via swap-with-last. A no-op if obj
// is not present at key.
func (g *Grid) Remove(key Key, obj handle.Handle) {
	bucket, ok := g.cells[key]
	if !ok {
		return
	}
	for i, h := range bucket {
		if h != obj {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket = bucket[:last]
		break
	}
	if len(bucket) == 0 {
		delete(g.cells, key)
	} else {
		g.cells[key] = bucket
	}
}

// At returns the handles occupying key, or nil if the voxel is empty or
// absent. The returned slice is owned by the Grid and must not be mutated.
func (g *Grid) At(key Key) []handle.Handle {
	return g.cells[key]
}

// Len reports the number of non-empty voxels.
func (g *Grid) Len() int { return len(g.cells) }

// Reset clears the grid's contents in place so existing pointers to the
// Grid keep observing an up-to-date (now empty) map, rather than replacing
// the Grid value wholesale.
func (g *Grid) Reset() {
	g.cells = make(map[Key][]handle.Handle)
}
