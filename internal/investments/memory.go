package investments

import (
	"context"
	"sync"
)

// MemoryStore keeps ledger records in process memory, keyed by investor.
// Records within a ledger retain insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	ledgers map[string][]*Record
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ledgers: make(map[string][]*Record),
	}
}

func (s *MemoryStore) Insert(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.ledgers[record.InvestorID] {
		if existing.ID == record.ID {
			return ErrConflict
		}
	}

	s.ledgers[record.InvestorID] = append(s.ledgers[record.InvestorID], record.Clone())
	return nil
}

func (s *MemoryStore) ListFor(_ context.Context, investorID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger := s.ledgers[investorID]
	result := make([]Record, 0, len(ledger))
	for i := len(ledger) - 1; i >= 0; i-- {
		result = append(result, *ledger[i].Clone())
	}
	return result, nil
}
