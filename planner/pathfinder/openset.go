package pathfinder

// openSet is a binary heap of arena indices ordered by (f, seq). It holds a
// pointer to the arena so that updates to a node's f can be re-sifted with
// heap.Fix through the node's heapIndex.
type openSet struct {
	arena []node
	items []int
}

func (s *openSet) Len() int { return len(s.items) }

func (s *openSet) Less(i, j int) bool {
	a, b := &s.arena[s.items[i]], &s.arena[s.items[j]]
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (s *openSet) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.arena[s.items[i]].heapIndex = i
	s.arena[s.items[j]].heapIndex = j
}

func (s *openSet) Push(x any) {
	idx := x.(int)
	s.arena[idx].heapIndex = len(s.items)
	s.items = append(s.items, idx)
}

func (s *openSet) Pop() any {
	old := s.items
	n := len(old)
	idx := old[n-1]
	s.items = old[:n-1]
	s.arena[idx].heapIndex = -1
	return idx
}
