package frustum

import (
	"testing"

	"github.com/boatbomber/CullThrottle/internal/voxel"
)

func TestInsertSortedOrdersByManhattanDistance(t *testing.T) {
	camera := voxel.Key{I: 0, J: 0, K: 0}
	var list []voxel.Key
	insertSorted(&list, voxel.Key{I: 5, J: 0, K: 0}, camera)
	insertSorted(&list, voxel.Key{I: 1, J: 0, K: 0}, camera)
	insertSorted(&list, voxel.Key{I: 3, J: 0, K: 0}, camera)

	want := []int32{1, 3, 5}
	if len(list) != len(want) {
		t.Fatalf("len(list) = %d, want %d", len(list), len(want))
	}
	for i, w := range want {
		if list[i].I != w {
			t.Fatalf("list[%d].I = %d, want %d (full: %v)", i, list[i].I, w, list)
		}
	}
}

func TestInsertSortedDedups(t *testing.T) {
	camera := voxel.Key{I: 0, J: 0, K: 0}
	var list []voxel.Key
	k := voxel.Key{I: 2, J: 0, K: 0}
	insertSorted(&list, k, camera)
	insertSorted(&list, k, camera)
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1 after inserting the same key twice", len(list))
	}
}

func TestInsertSortedDedupsAcrossEqualDistanceRun(t *testing.T) {
	camera := voxel.Key{I: 0, J: 0, K: 0}
	a := voxel.Key{I: 3, J: 0, K: 0} // Manhattan distance 3 from camera
	b := voxel.Key{I: 0, J: 3, K: 0} // also 3
	c := voxel.Key{I: 0, J: 0, K: 3} // also 3

	var list []voxel.Key
	insertSorted(&list, a, camera)
	insertSorted(&list, b, camera)
	insertSorted(&list, c, camera)
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3 distinct equal-distance keys", len(list))
	}

	// sort.Search lands on the first element of the equal-distance run
	// (a), so re-inserting c (the last element of that run) must still
	// dedup correctly instead of appending a second copy.
	insertSorted(&list, c, camera)
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3 after re-inserting a key from later in the equal-distance run", len(list))
	}
}
