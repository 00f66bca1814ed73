// Package storage provides drawing history implementations.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

// Compile-time interface check.
var _ domain.HistoryStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory history store. Safe for concurrent access.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.DrawingRecord
	log     *logger.Logger
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.DrawingRecord),
		log:     log,
	}
}

// Save stores rec, replacing any record for the same session.
func (s *MemoryStore) Save(ctx context.Context, rec domain.DrawingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving session %s (animal=%s, %d/%d, finished=%v)",
		rec.SessionID, rec.Animal, rec.StepsDone, rec.TotalSteps, rec.Finished)
	s.records[rec.SessionID] = rec
	return nil
}

// Load retrieves the record of a session.
func (s *MemoryStore) Load(ctx context.Context, id string) (domain.DrawingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		s.log.Debug("session not found: %s", id)
		return domain.DrawingRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

// Delete removes the record of a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.records, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// List returns all records ordered by start time.
func (s *MemoryStore) List(ctx context.Context) ([]domain.DrawingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DrawingRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].SessionID < out[j].SessionID
	})
	s.log.Debug("listing history, count=%d", len(out))
	return out, nil
}
