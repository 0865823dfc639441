package archive

import (
	"context"
	"sync"
)

// MemoryRepository keeps records in memory. Used when no database is
// configured and by tests.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	records []*GameRecord
	byID    map[int64]*GameRecord
	bySess  map[string]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		byID:   make(map[int64]*GameRecord),
		bySess: make(map[string]int64),
	}
}

func (r *MemoryRepository) InsertGame(_ context.Context, rec *GameRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.bySess[rec.SessionID]; ok {
		return id, nil
	}
	cp := *rec
	cp.ID = r.nextID
	r.nextID++
	r.records = append(r.records, &cp)
	r.byID[cp.ID] = &cp
	r.bySess[cp.SessionID] = cp.ID
	return cp.ID, nil
}

func (r *MemoryRepository) GetGame(_ context.Context, id int64) (*GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *MemoryRepository) GetRecentGames(_ context.Context, limit int) ([]*GameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []*GameRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *r.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) Close() error { return nil }
