package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/ports"
	"github.com/architeacher/items/pkg/circuitbreaker"
)

var _ ports.ItemsService = (*ItemsService)(nil)

// ItemsService validates input and calls the repository through a circuit
// breaker. Statements are never retried.
type ItemsService struct {
	repo    ports.ItemsRepository
	breaker *circuitbreaker.CircuitBreaker
}

func NewItemsService(repo ports.ItemsRepository, breaker *circuitbreaker.CircuitBreaker) *ItemsService {
	return &ItemsService{
		repo:    repo,
		breaker: breaker,
	}
}

// IsStoreFailure tells the breaker which errors count against the store.
func IsStoreFailure(err error) bool {
	return errors.Is(err, model.ErrDatabaseQuery)
}

func (s *ItemsService) ListItems(ctx context.Context) (*model.ItemList, error) {
	items, err := guard(s.breaker, func() ([]*model.Item, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	return model.NewItemList(items), nil
}

func (s *ItemsService) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	item, err := guard(s.breaker, func() (*model.Item, error) {
		return s.repo.FetchByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if item == nil {
		return nil, model.ErrItemNotFound
	}

	return item, nil
}

func (s *ItemsService) CreateItem(ctx context.Context, name string, description *string) (*model.Item, error) {
	fields, err := model.NewItemFields(name, description)
	if err != nil {
		return nil, err
	}

	return guard(s.breaker, func() (*model.Item, error) {
		return s.repo.Create(ctx, fields)
	})
}

func (s *ItemsService) UpdateItem(ctx context.Context, id model.ItemID, name string, description *string) (*model.Item, error) {
	fields, err := model.NewItemFields(name, description)
	if err != nil {
		return nil, err
	}

	item, err := guard(s.breaker, func() (*model.Item, error) {
		return s.repo.Update(ctx, id, fields)
	})
	if err != nil {
		return nil, err
	}

	if item == nil {
		return nil, model.ErrItemNotFound
	}

	return item, nil
}

func (s *ItemsService) DeleteItem(ctx context.Context, id model.ItemID) error {
	deleted, err := guard(s.breaker, func() (bool, error) {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if !deleted {
		return model.ErrItemNotFound
	}

	return nil
}

func guard[T any](breaker *circuitbreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := circuitbreaker.Execute(breaker, fn)
	if circuitbreaker.IsRejection(err) {
		return result, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	return result, err
}
