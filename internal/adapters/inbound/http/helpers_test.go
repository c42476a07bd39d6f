package http_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/architeacher/items/internal/domain/model"
)

type (
	memoryRepository struct {
		mu     sync.Mutex
		items  map[model.ItemID]*model.Item
		nextID model.ItemID
	}

	stubStore struct {
		healthy bool
	}
)

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[model.ItemID]*model.Item)}
}

func (r *memoryRepository) List(context.Context) ([]*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*model.Item, 0, len(r.items))
	for _, item := range r.items {
		copied := *item
		items = append(items, &copied)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	return items, nil
}

func (r *memoryRepository) FetchByID(_ context.Context, id model.ItemID) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}

	copied := *item

	return &copied, nil
}

func (r *memoryRepository) Create(_ context.Context, fields model.ItemFields) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC()
	item := &model.Item{ID: r.nextID, Name: fields.Name, Description: fields.Description, CreatedAt: now, UpdatedAt: now}
	r.items[item.ID] = item

	copied := *item

	return &copied, nil
}

func (r *memoryRepository) Update(_ context.Context, id model.ItemID, fields model.ItemFields) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}

	item.Name = fields.Name
	item.Description = fields.Description
	item.UpdatedAt = time.Now().UTC()

	copied := *item

	return &copied, nil
}

func (r *memoryRepository) Delete(_ context.Context, id model.ItemID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]
	delete(r.items, id)

	return ok, nil
}

func (s stubStore) Probe(context.Context) bool {
	return s.healthy
}

func (s stubStore) Status() model.ConnectionStatus {
	if s.healthy {
		return model.ConnectionStatusConnected
	}

	return model.ConnectionStatusDisconnected
}
