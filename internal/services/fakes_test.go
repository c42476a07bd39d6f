package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/architeacher/items/internal/domain/model"
)

type fakeRepository struct {
	mu     sync.Mutex
	items  map[model.ItemID]*model.Item
	nextID model.ItemID
	err    error
	calls  int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{items: make(map[model.ItemID]*model.Item)}
}

func (r *fakeRepository) List(context.Context) ([]*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return nil, r.err
	}

	items := make([]*model.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}

	return items, nil
}

func (r *fakeRepository) FetchByID(_ context.Context, id model.ItemID) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return nil, r.err
	}

	return r.items[id], nil
}

func (r *fakeRepository) Create(_ context.Context, fields model.ItemFields) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return nil, r.err
	}

	r.nextID++
	now := time.Now().UTC()
	item := &model.Item{ID: r.nextID, Name: fields.Name, Description: fields.Description, CreatedAt: now, UpdatedAt: now}
	r.items[item.ID] = item

	return item, nil
}

func (r *fakeRepository) Update(_ context.Context, id model.ItemID, fields model.ItemFields) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return nil, r.err
	}

	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}

	updated := *item
	updated.Name = fields.Name
	updated.Description = fields.Description
	updated.UpdatedAt = time.Now().UTC()
	r.items[id] = &updated

	return &updated, nil
}

func (r *fakeRepository) Delete(_ context.Context, id model.ItemID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.err != nil {
		return false, r.err
	}

	_, ok := r.items[id]
	delete(r.items, id)

	return ok, nil
}

func (r *fakeRepository) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = err
}

func (r *fakeRepository) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.calls
}

type fakeStore struct {
	healthy bool
	status  model.ConnectionStatus
}

func (s *fakeStore) Probe(context.Context) bool {
	return s.healthy
}

func (s *fakeStore) Status() model.ConnectionStatus {
	return s.status
}

type fakeCache struct {
	status model.ConnectionStatus
}

func (c *fakeCache) IsConnected() bool {
	return c.status == model.ConnectionStatusConnected
}

func (c *fakeCache) Status() model.ConnectionStatus {
	return c.status
}
