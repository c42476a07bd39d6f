package decorator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/architeacher/items/pkg/cacheaside"
	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics/noop"
	"github.com/stretchr/testify/require"
)

type (
	lookupQuery struct {
		ID int
	}

	lookupResult struct {
		Name string `json:"name"`
	}

	memoryStore struct {
		mu      sync.Mutex
		entries map[string][]byte
		deletes []string
	}

	countingHandler struct {
		mu     sync.Mutex
		calls  int
		result *lookupResult
		err    error
	}
)

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[key]

	return value, ok
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value

	return true
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
		m.deletes = append(m.deletes, key)
	}

	return true
}

func (h *countingHandler) Execute(_ context.Context, _ lookupQuery) (*lookupResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls++

	return h.result, h.err
}

func (h *countingHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.calls
}

func lookupKey(q lookupQuery) string {
	return "lookup:" + string(rune('0'+q.ID))
}

func newTestLayer(store cacheaside.Store) *cacheaside.Layer {
	return cacheaside.New(store, cacheaside.Config{TTL: time.Minute}, logger.NewTestLogger(), noop.NewMetricsClient())
}

func TestCachingDecoratorMissThenHit(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	layer := newTestLayer(store)
	base := &countingHandler{result: &lookupResult{Name: "A"}}

	handler := ApplyCachingDecorator[lookupQuery, *lookupResult](base, layer, lookupKey, logger.NewTestLogger())

	first, err := handler.Execute(t.Context(), lookupQuery{ID: 1})
	require.NoError(t, err)
	require.False(t, first.Hit)
	require.Equal(t, "A", first.Value.Name)

	layer.Wait()

	second, err := handler.Execute(t.Context(), lookupQuery{ID: 1})
	require.NoError(t, err)
	require.True(t, second.Hit)
	require.Equal(t, "A", second.Value.Name)
	require.Equal(t, 1, base.Calls())
}

func TestCachingDecoratorDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	layer := newTestLayer(store)
	base := &countingHandler{err: errors.New("boom")}

	handler := ApplyCachingDecorator[lookupQuery, *lookupResult](base, layer, lookupKey, logger.NewTestLogger())

	for range 2 {
		_, err := handler.Execute(t.Context(), lookupQuery{ID: 2})
		require.Error(t, err)
		layer.Wait()
	}

	require.Equal(t, 2, base.Calls())

	_, found := store.Get(t.Context(), lookupKey(lookupQuery{ID: 2}))
	require.False(t, found)
}

func TestCachingDecoratorIgnoresUndecodableEntries(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.entries[lookupKey(lookupQuery{ID: 3})] = []byte("{not json")

	layer := newTestLayer(store)
	base := &countingHandler{result: &lookupResult{Name: "fresh"}}

	handler := ApplyCachingDecorator[lookupQuery, *lookupResult](base, layer, lookupKey, logger.NewTestLogger())

	result, err := handler.Execute(t.Context(), lookupQuery{ID: 3})
	require.NoError(t, err)
	require.False(t, result.Hit)
	require.Equal(t, "fresh", result.Value.Name)
	require.Equal(t, 1, base.Calls())
}

func TestCachingDecoratorBypassWithoutCache(t *testing.T) {
	t.Parallel()

	base := &countingHandler{result: &lookupResult{Name: "direct"}}
	handler := ApplyCachingDecorator[lookupQuery, *lookupResult](base, nil, lookupKey, logger.NewTestLogger())

	for range 2 {
		result, err := handler.Execute(t.Context(), lookupQuery{ID: 4})
		require.NoError(t, err)
		require.False(t, result.Hit)
		require.Equal(t, "direct", result.Value.Name)
	}

	require.Equal(t, 2, base.Calls())
}
