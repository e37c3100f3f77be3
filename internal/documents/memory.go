package documents

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sahilkapur/ledgerdesk/pkg/pagination"
)

// MemoryStore is the in-memory document backend. Mutations are serialized
// per document by a per-entry mutex; at most one mutation is in flight for
// any document identity at a time. Operations on distinct documents proceed
// in parallel.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*memoryEntry
}

type memoryEntry struct {
	mu  sync.Mutex
	doc *Document
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[uuid.UUID]*memoryEntry)}
}

func (s *MemoryStore) Insert(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return ErrConflict
	}

	s.docs[doc.ID] = &memoryEntry{doc: doc.Clone()}
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.doc.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id uuid.UUID, fn MutateFunc) (*Document, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// fn works on a clone; the canonical document only advances when fn
	// accepts, so a rejected mutation leaves no partial writes behind.
	work := entry.doc.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}

	entry.doc = work
	return work.Clone(), nil
}

func (s *MemoryStore) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	matched := make([]Document, 0)

	for _, entry := range s.snapshot() {
		if !filters.Match(entry) {
			continue
		}
		if page.Search != nil && !strings.Contains(
			strings.ToLower(entry.Filename),
			strings.ToLower(*page.Search),
		) {
			continue
		}
		matched = append(matched, *entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UploadedAt.After(matched[j].UploadedAt)
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func (s *MemoryStore) entry(id uuid.UUID) (*memoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *MemoryStore) snapshot() []*Document {
	s.mu.RLock()
	entries := make([]*memoryEntry, 0, len(s.docs))
	for _, e := range s.docs {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	docs := make([]*Document, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		docs = append(docs, e.doc.Clone())
		e.mu.Unlock()
	}
	return docs
}
