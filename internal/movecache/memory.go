package movecache

import (
	"container/list"
	"context"
	"sync"
)

const DefaultCapacity = 4096

type memoryEntry struct {
	fen  string
	move string
}

// MemoryStore is a bounded in-process LRU cache. When full, the least
// recently used position is evicted.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[string]*list.Element
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

func (s *MemoryStore) Lookup(_ context.Context, fen string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.index[fen]
	if !ok {
		return "", false
	}
	s.order.MoveToFront(el)
	return el.Value.(*memoryEntry).move, true
}

func (s *MemoryStore) Insert(_ context.Context, fen string, moveUCI string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.index[fen]; ok {
		el.Value.(*memoryEntry).move = moveUCI
		s.order.MoveToFront(el)
		return
	}
	s.index[fen] = s.order.PushFront(&memoryEntry{fen: fen, move: moveUCI})
	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.index, oldest.Value.(*memoryEntry).fen)
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
