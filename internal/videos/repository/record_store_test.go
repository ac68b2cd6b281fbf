package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"video_transcode_service/internal/videos/domain"

	"github.com/stretchr/testify/assert"
)

func newRecord(id string) *domain.VideoRecord {
	return &domain.VideoRecord{
		ID:               id,
		OriginalKey:      "original/" + id + ".mp4",
		CreatedAt:        time.Now().UTC(),
		Status:           domain.VideoPending,
		OriginalFilename: id + ".mp4",
		Mime:             "video/mp4",
	}
}

func TestList_EmptyStore(t *testing.T) {
	store := NewRecordStore()

	items, total := store.List(1, 10)

	assert.Equal(t, 0, total)
	assert.Empty(t, items)
}

func TestGet_NotFound(t *testing.T) {
	store := NewRecordStore()

	_, err := store.Get("missing")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCreateAndGet_ReturnsCopies(t *testing.T) {
	store := NewRecordStore()

	created := store.Create(newRecord("a"))
	// mutating the returned copy must not leak into the store
	created.Status = domain.VideoError

	got, err := store.Get("a")
	assert.NoError(t, err)
	assert.Equal(t, domain.VideoPending, got.Status)

	got.LowKey = "low/a_low.mp4"
	again, err := store.Get("a")
	assert.NoError(t, err)
	assert.Empty(t, again.LowKey)
}

func TestList_ReverseCreationOrderPagination(t *testing.T) {
	store := NewRecordStore()
	store.Create(newRecord("first"))
	store.Create(newRecord("second"))
	store.Create(newRecord("third"))

	items, total := store.List(1, 2)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)
	assert.Equal(t, "third", items[0].ID)
	assert.Equal(t, "second", items[1].ID)

	items, total = store.List(2, 2)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)
	assert.Equal(t, "first", items[0].ID)

	items, _ = store.List(3, 2)
	assert.Empty(t, items)
}

func TestList_ClampsInvalidPaging(t *testing.T) {
	store := NewRecordStore()
	for i := 0; i < 3; i++ {
		store.Create(newRecord(fmt.Sprintf("rec-%d", i)))
	}

	items, total := store.List(0, 0)
	assert.Equal(t, 3, total)
	// page clamps to 1, pageSize to 10
	assert.Len(t, items, 3)
	assert.Equal(t, "rec-2", items[0].ID)

	items, _ = store.List(-5, -5)
	assert.Len(t, items, 3)
}

func TestUpdate_MutatesUnderLock(t *testing.T) {
	store := NewRecordStore()
	store.Create(newRecord("a"))

	updated, err := store.Update("a", func(r *domain.VideoRecord) {
		r.LowKey = "low/a_low.mp4"
		r.Status = domain.VideoDone
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.VideoDone, updated.Status)
	assert.Equal(t, "low/a_low.mp4", updated.LowKey)

	got, err := store.Get("a")
	assert.NoError(t, err)
	assert.Equal(t, domain.VideoDone, got.Status)

	_, err = store.Update("missing", func(r *domain.VideoRecord) {})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewRecordStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("rec-%d", n)
			store.Create(newRecord(id))
			_, _ = store.Update(id, func(r *domain.VideoRecord) {
				r.LowKey = "low/" + id + "_low.mp4"
				r.Status = domain.VideoDone
			})
		}(i)
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, _ := store.List(1, 50)
			for _, rec := range items {
				// a reader must never observe a torn record
				if rec.Status == domain.VideoDone {
					assert.NotEmpty(t, rec.LowKey)
				}
			}
		}()
	}
	wg.Wait()

	_, total := store.List(1, 50)
	assert.Equal(t, 20, total)
}
