package uthread

import "container/heap"

// idHeap is a min-heap of free thread ids, so that Spawn can always hand out
// the smallest free id currently available. container/heap is the idiomatic
// Go vehicle for the priority queue a C++ implementation would reach for
// with std::priority_queue<thread_id, ..., std::greater<>>.
type idHeap []int

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)         { *h = append(*h, x.(int)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func newIDHeap(maxThreads int) *idHeap {
	h := make(idHeap, 0, maxThreads-1)
	for id := 1; id < maxThreads; id++ {
		h = append(h, id)
	}
	heap.Init(&h)
	return &h
}

func (h *idHeap) takeSmallest() (int, bool) {
	if h.Len() == 0 {
		return 0, false
	}
	return heap.Pop(h).(int), true
}

func (h *idHeap) release(id int) {
	heap.Push(h, id)
}
