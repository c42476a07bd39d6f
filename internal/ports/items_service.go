package ports

import (
	"context"

	"github.com/architeacher/items/internal/domain/model"
)

// ItemsService defines the business operations on items.
type ItemsService interface {
	ListItems(ctx context.Context) (*model.ItemList, error)
	GetItem(ctx context.Context, id model.ItemID) (*model.Item, error)
	CreateItem(ctx context.Context, name string, description *string) (*model.Item, error)
	UpdateItem(ctx context.Context, id model.ItemID, name string, description *string) (*model.Item, error)
	DeleteItem(ctx context.Context, id model.ItemID) error
}
