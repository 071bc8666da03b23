package frustum

import (
	"sort"

	"github.com/boatbomber/CullThrottle/internal/voxel"
)

// insertSorted inserts k into list, keeping it ordered by ascending
// Manhattan distance from cameraVoxel via binary-search insertion. A no-op
// if k is already present.
func insertSorted(list *[]voxel.Key, k voxel.Key, cameraVoxel voxel.Key) {
	d := cameraVoxel.Manhattan(k)
	items := *list
	idx := sort.Search(len(items), func(i int) bool {
		return cameraVoxel.Manhattan(items[i]) >= d
	})
	// Several keys can share the same Manhattan distance, so the dedup check
	// must scan the whole equal-distance run at idx, not just items[idx].
	for i := idx; i < len(items) && cameraVoxel.Manhattan(items[i]) == d; i++ {
		if items[i] == k {
			return
		}
	}
	items = append(items, voxel.Key{})
	copy(items[idx+1:], items[idx:])
	items[idx] = k
	*list = items
}
