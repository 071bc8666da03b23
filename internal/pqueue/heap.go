// Package pqueue implements the dedup'd, priority-ordered min-heap that
// backs the visible-object queue. It follows the index-tracking
// container/heap.Interface pattern used by the teacher's A* open-set
// (pathfinding.go's pathQueue/pathNode.index), generalized from path nodes
// to object handles.
package pqueue

import (
	"container/heap"

	"github.com/boatbomber/CullThrottle/internal/handle"
)

type entry struct {
	item     handle.Handle
	priority float64
	index    int
}

type innerHeap []*entry

func (h innerHeap) Len() int            { return len(h) }
func (h innerHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h innerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *innerHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *innerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Staged is a snapshot entry from the incoming batch, returned by
// IncomingBatchSnapshot.
type Staged struct {
	Item     handle.Handle
	Priority float64
}

// Queue is a binary min-heap over (priority, Handle) pairs. It rejects
// duplicate handles and supports O(1) append staging via an incoming batch
// that is heapified in bulk.
type Queue struct {
	heap    innerHeap
	indices map[handle.Handle]*entry
	batch   []Staged
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{indices: make(map[handle.Handle]*entry)}
}

// Enqueue inserts item at priority p in O(log n). A no-op if item is
// already present.
func (q *Queue) Enqueue(item handle.Handle, p float64) {
	if _, ok := q.indices[item]; ok {
		return
	}
	e := &entry{item: item, priority: p}
	q.indices[item] = e
	heap.Push(&q.heap, e)
}

// BatchEnqueue appends every (items[i], priorities[i]) pair not already
// present, then rebuilds the heap in O(n).
func (q *Queue) BatchEnqueue(items []handle.Handle, priorities []float64) {
	changed := false
	for i, item := range items {
		if _, ok := q.indices[item]; ok {
			continue
		}
		e := &entry{item: item, priority: priorities[i]}
		q.indices[item] = e
		q.heap = append(q.heap, e)
		changed = true
	}
	if changed {
		heap.Init(&q.heap)
	}
}

// AddToIncomingBatch stages (item, p) without touching the heap.
func (q *Queue) AddToIncomingBatch(item handle.Handle, p float64) {
	q.batch = append(q.batch, Staged{Item: item, Priority: p})
}

// AddMultipleToIncomingBatch stages every (items[i], priorities[i]) pair.
func (q *Queue) AddMultipleToIncomingBatch(items []handle.Handle, priorities []float64) {
	for i, item := range items {
		q.batch = append(q.batch, Staged{Item: item, Priority: priorities[i]})
	}
}

// EnqueueIncomingBatch moves every staged entry into the heap via
// BatchEnqueue, then clears the staging area.
func (q *Queue) EnqueueIncomingBatch() {
	if len(q.batch) == 0 {
		return
	}
	items := make([]handle.Handle, len(q.batch))
	priorities := make([]float64, len(q.batch))
	for i, s := range q.batch {
		items[i] = s.Item
		priorities[i] = s.Priority
	}
	q.BatchEnqueue(items, priorities)
	q.ClearIncomingBatch()
}

// ClearIncomingBatch discards any staged, not-yet-heapified entries.
func (q *Queue) ClearIncomingBatch() {
	q.batch = q.batch[:0]
}

// ShrinkIncomingBatch reclaims excess staging capacity once it has grown
// well beyond the batch's current length.
func (q *Queue) ShrinkIncomingBatch() {
	if cap(q.batch) <= len(q.batch)*2+16 {
		return
	}
	trimmed := make([]Staged, len(q.batch))
	copy(trimmed, q.batch)
	q.batch = trimmed
}

// IncomingBatchSnapshot returns a copy of the currently staged entries,
// independent of later mutation of the live batch.
func (q *Queue) IncomingBatchSnapshot() []Staged {
	out := make([]Staged, len(q.batch))
	copy(out, q.batch)
	return out
}

// Dequeue pops the minimum-priority item. Panics if the queue is empty:
// EmptyHeapPop is a programming error, never a recoverable runtime
// condition, matching spec.md §7.
func (q *Queue) Dequeue() (handle.Handle, float64) {
	if len(q.heap) == 0 {
		panic("pqueue: Dequeue called on an empty queue")
	}
	e := heap.Pop(&q.heap).(*entry)
	delete(q.indices, e.item)
	return e.item, e.priority
}

// Peek returns the minimum-priority item without removing it.
func (q *Queue) Peek() (handle.Handle, bool) {
	if len(q.heap) == 0 {
		return handle.Invalid, false
	}
	return q.heap[0].item, true
}

// PeekPriority returns the minimum-priority item's priority without
// removing it.
func (q *Queue) PeekPriority() (float64, bool) {
	if len(q.heap) == 0 {
		return 0, false
	}
	return q.heap[0].priority, true
}

// Len reports the number of heapified entries (excluding staged-but-not-yet-
// enqueued ones).
func (q *Queue) Len() int { return len(q.heap) }

// IsEmpty reports whether the heap has no entries.
func (q *Queue) IsEmpty() bool { return len(q.heap) == 0 }

// Contains reports whether item is currently heapified.
func (q *Queue) Contains(item handle.Handle) bool {
	_, ok := q.indices[item]
	return ok
}

// Remove deletes item from the heap if present.
func (q *Queue) Remove(item handle.Handle) {
	e, ok := q.indices[item]
	if !ok {
		return
	}
	heap.Remove(&q.heap, e.index)
	delete(q.indices, item)
}

// Update changes item's priority in place. A no-op if item is absent.
func (q *Queue) Update(item handle.Handle, p float64) {
	e, ok := q.indices[item]
	if !ok {
		return
	}
	e.priority = p
	heap.Fix(&q.heap, e.index)
}

// Clear drops every heapified entry, leaving the incoming batch untouched.
func (q *Queue) Clear() {
	for _, e := range q.heap {
		delete(q.indices, e.item)
	}
	q.heap = q.heap[:0]
}
