package store

import (
	"context"
	"sync"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

// MemoryStore keeps the audit trail in process memory. Used in tests and in
// environments that run without a database.
type MemoryStore struct {
	entries []models.AttemptLogEntry
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendAttempt(ctx context.Context, entry models.AttemptLogEntry) error {
	// Check if the context is canceled or timed out
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) ListAttempts(ctx context.Context, shipmentRef string, limit, offset int32) ([]models.AttemptLogEntry, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Newest first, filtered by shipment reference when given.
	var result []models.AttemptLogEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if shipmentRef == "" || e.ShipmentRef == shipmentRef {
			result = append(result, e)
		}
	}

	// Apply pagination
	start := int(offset)
	if start > len(result) {
		return nil, nil
	}
	end := len(result)
	if limit > 0 && start+int(limit) < end {
		end = start + int(limit)
	}
	return result[start:end], nil
}
