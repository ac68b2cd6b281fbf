package repository

import (
	"errors"
	"sync"

	"video_transcode_service/internal/videos/domain"
)

// ErrRecordNotFound no record matches the requested id
var ErrRecordNotFound = errors.New("video record not found")

// RecordStore definition the in-memory video record index. Records are shared
// between request handlers and the transcode worker, so every read hands out a
// copy and every mutation goes through Update under the store lock, so a
// reader never observes a half-written record.
type RecordStore interface {
	Create(rec *domain.VideoRecord) *domain.VideoRecord
	Get(id string) (*domain.VideoRecord, error)
	// List returns the requested page most-recently-created first, plus the
	// total record count. page < 1 is clamped to 1, pageSize < 1 to 10.
	List(page, pageSize int) ([]domain.VideoRecord, int)
	Update(id string, mutate func(*domain.VideoRecord)) (*domain.VideoRecord, error)
}

type recordStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.VideoRecord
	ordered []string // insertion order, oldest first
}

// NewRecordStore create a RecordStore
func NewRecordStore() RecordStore {
	return &recordStore{
		byID: make(map[string]*domain.VideoRecord),
	}
}

// Create stores a copy of rec and returns an independent copy
func (s *recordStore) Create(rec *domain.VideoRecord) *domain.VideoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	s.byID[stored.ID] = &stored
	s.ordered = append(s.ordered, stored.ID)

	out := stored
	return &out
}

// Get returns a copy of the record with the given id
func (s *recordStore) Get(id string) (*domain.VideoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := *rec
	return &out, nil
}

// List pages through records in reverse creation order
func (s *recordStore) List(page, pageSize int) ([]domain.VideoRecord, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.ordered)
	start := (page - 1) * pageSize
	if start >= total {
		return []domain.VideoRecord{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.VideoRecord, 0, end-start)
	for i := start; i < end; i++ {
		// ordered is oldest first, walk it from the back
		id := s.ordered[total-1-i]
		items = append(items, *s.byID[id])
	}
	return items, total
}

// Update applies mutate to the stored record under the lock and returns a
// copy of the result
func (s *recordStore) Update(id string, mutate func(*domain.VideoRecord)) (*domain.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	mutate(rec)
	out := *rec
	return &out, nil
}
