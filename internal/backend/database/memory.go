package database

import (
	"context"
	"sync"
	"time"
)

// MemoryDatabase keeps photos in process memory; everything is lost on restart.
type MemoryDatabase struct {
	mu     sync.RWMutex
	photos map[string]*Photo
	now    func() time.Time
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		photos: make(map[string]*Photo),
		now:    time.Now,
	}
}

func (m *MemoryDatabase) CreateDatabase() error {
	return nil
}

func (m *MemoryDatabase) DoesDatabaseExist() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.photos != nil
}

func (m *MemoryDatabase) Close() error {
	return nil
}

func (m *MemoryDatabase) ListPhotos(_ context.Context) ([]*Photo, error) {
	m.mu.RLock()
	photos := make([]*Photo, 0, len(m.photos))
	for _, photo := range m.photos {
		photos = append(photos, photo.Clone())
	}
	m.mu.RUnlock()

	SortByDateDesc(photos)
	return photos, nil
}

func (m *MemoryDatabase) GetPhoto(_ context.Context, id string) (*Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	photo, ok := m.photos[id]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	return photo.Clone(), nil
}

func (m *MemoryDatabase) CreatePhoto(_ context.Context, input NewPhoto) (*Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := generateID()
	if err != nil {
		return nil, err
	}

	photo := newPhotoRecord(id, input, m.now())
	m.photos[id] = photo
	return photo.Clone(), nil
}

func (m *MemoryDatabase) UpdatePhoto(_ context.Context, id string, update PhotoUpdate) (*Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	photo, ok := m.photos[id]
	if !ok {
		return nil, ErrPhotoNotFound
	}
	update.applyTo(photo)
	return photo.Clone(), nil
}

func (m *MemoryDatabase) DeletePhoto(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return false, nil
	}
	delete(m.photos, id)
	return true, nil
}
