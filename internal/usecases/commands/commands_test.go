package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/internal/usecases/commands"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics/noop"
	"github.com/stretchr/testify/require"
	otelNoop "go.opentelemetry.io/otel/trace/noop"
)

type (
	stubItemsService struct {
		err error
	}

	recordingInvalidator struct {
		mu   sync.Mutex
		keys []string
	}
)

func (s stubItemsService) ListItems(context.Context) (*model.ItemList, error) {
	return model.NewItemList(nil), s.err
}

func (s stubItemsService) GetItem(_ context.Context, id model.ItemID) (*model.Item, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &model.Item{ID: id}, nil
}

func (s stubItemsService) CreateItem(_ context.Context, name string, description *string) (*model.Item, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &model.Item{ID: 1, Name: name, Description: description}, nil
}

func (s stubItemsService) UpdateItem(_ context.Context, id model.ItemID, name string, description *string) (*model.Item, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &model.Item{ID: id, Name: name, Description: description}, nil
}

func (s stubItemsService) DeleteItem(context.Context, model.ItemID) error {
	return s.err
}

func (r *recordingInvalidator) Invalidate(_ context.Context, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys = append(r.keys, keys...)
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.keys...)
}

func TestItemCommandHandlers(t *testing.T) {
	t.Parallel()

	log := logger.NewTestLogger()
	mc := noop.NewMetricsClient()
	tp := otelNoop.NewTracerProvider()

	cases := []struct {
		name         string
		svcErr       error
		run          func(t *testing.T, svc stubItemsService, invalidator *recordingInvalidator) error
		expectedKeys []string
	}{
		{
			name: "create invalidates the collection",
			run: func(t *testing.T, svc stubItemsService, invalidator *recordingInvalidator) error {
				handler := commands.NewCreateItemCommandHandler(svc, invalidator, log, mc, tp)
				item, err := handler.Handle(t.Context(), commands.CreateItemCommand{Name: "Laptop"})
				if err == nil {
					require.Equal(t, "Laptop", item.Name)
				}

				return err
			},
			expectedKeys: []string{model.ItemsCollectionKey},
		},
		{
			name: "update invalidates the item then the collection",
			run: func(t *testing.T, svc stubItemsService, invalidator *recordingInvalidator) error {
				handler := commands.NewUpdateItemCommandHandler(svc, invalidator, log, mc, tp)
				_, err := handler.Handle(t.Context(), commands.UpdateItemCommand{ID: 4, Name: "Desk"})

				return err
			},
			expectedKeys: []string{"item:4", model.ItemsCollectionKey},
		},
		{
			name: "delete invalidates the item then the collection",
			run: func(t *testing.T, svc stubItemsService, invalidator *recordingInvalidator) error {
				handler := commands.NewDeleteItemCommandHandler(svc, invalidator, log, mc, tp)
				id, err := handler.Handle(t.Context(), commands.DeleteItemCommand{ID: 5})
				if err == nil {
					require.Equal(t, model.ItemID(5), id)
				}

				return err
			},
			expectedKeys: []string{"item:5", model.ItemsCollectionKey},
		},
		{
			name:   "failed update leaves the cache alone",
			svcErr: model.ErrItemNotFound,
			run: func(t *testing.T, svc stubItemsService, invalidator *recordingInvalidator) error {
				handler := commands.NewUpdateItemCommandHandler(svc, invalidator, log, mc, tp)
				_, err := handler.Handle(t.Context(), commands.UpdateItemCommand{ID: 4, Name: "Desk"})

				return err
			},
		},
		{
			name:   "failed delete leaves the cache alone",
			svcErr: errors.New("store down"),
			run: func(t *testing.T, svc stubItemsService, invalidator *recordingInvalidator) error {
				handler := commands.NewDeleteItemCommandHandler(svc, invalidator, log, mc, tp)
				_, err := handler.Handle(t.Context(), commands.DeleteItemCommand{ID: 5})

				return err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			invalidator := &recordingInvalidator{}
			err := tc.run(t, stubItemsService{err: tc.svcErr}, invalidator)

			if tc.svcErr != nil {
				require.ErrorIs(t, err, tc.svcErr)
				require.Empty(t, invalidator.invalidated())

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedKeys, invalidator.invalidated())
		})
	}
}

func TestItemCommandHandlers_WithoutCache(t *testing.T) {
	t.Parallel()

	handler := commands.NewCreateItemCommandHandler(
		stubItemsService{},
		nil,
		logger.NewTestLogger(),
		noop.NewMetricsClient(),
		otelNoop.NewTracerProvider(),
	)

	item, err := handler.Handle(t.Context(), commands.CreateItemCommand{Name: "Chair"})
	require.NoError(t, err)
	require.Equal(t, "Chair", item.Name)
}
