package ports

import (
	"context"

	"github.com/architeacher/items/internal/domain/model"
)

type (
	ItemSaver interface {
		// Create stores a new item and returns it with its generated fields.
		Create(ctx context.Context, fields model.ItemFields) (*model.Item, error)
	}

	ItemFetcher interface {
		// FetchByID returns nil without an error when no item has the given ID.
		FetchByID(ctx context.Context, id model.ItemID) (*model.Item, error)
	}

	ItemFinder interface {
		// List returns every item, newest first.
		List(ctx context.Context) ([]*model.Item, error)
	}

	ItemUpdater interface {
		// Update replaces the mutable fields and returns nil when the item is missing.
		Update(ctx context.Context, id model.ItemID, fields model.ItemFields) (*model.Item, error)
	}

	ItemDeleter interface {
		// Delete reports whether a row was removed.
		Delete(ctx context.Context, id model.ItemID) (bool, error)
	}

	// ItemsRepository defines the persistence operations for items.
	ItemsRepository interface {
		ItemSaver
		ItemFetcher
		ItemFinder
		ItemUpdater
		ItemDeleter
	}

	SchemaManager interface {
		EnsureSchema(ctx context.Context) error
	}
)
