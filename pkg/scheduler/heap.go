package scheduler

import "container/heap"

// taskHeap is a min-heap of scheduled tasks ordered by due time, with the
// submission sequence as tie-breaker so same-instant tasks run in FIFO order.
type taskHeap []*scheduledTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if !h[i].dueAt.Equal(h[j].dueAt) {
		return h[i].dueAt.Before(h[j].dueAt)
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *taskHeap) Push(x interface{}) {
	t := x.(*scheduledTask)
	t.heapIndex = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.heapIndex = -1
	*h = old[:n-1]
	return t
}

// peek returns the earliest-due task without removing it, or nil when empty.
func (h taskHeap) peek() *scheduledTask {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// push inserts t maintaining heap order.
func (s *scheduler) push(t *scheduledTask) {
	heap.Push(&s.pending, t)
}

// pop removes and returns the earliest-due task. Callers must check emptiness.
func (s *scheduler) pop() *scheduledTask {
	return heap.Pop(&s.pending).(*scheduledTask)
}

// remove detaches t from the pending heap if it is still queued.
func (s *scheduler) remove(t *scheduledTask) {
	if t.heapIndex >= 0 {
		heap.Remove(&s.pending, t.heapIndex)
	}
}
