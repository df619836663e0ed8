package storage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionCache_LoadsOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	cache := NewCollectionCache(func(_ context.Context, id int) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"1", "2"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := cache.Get(context.Background(), 3)
			assert.NoError(t, err)
			assert.Equal(t, []string{"1", "2"}, ids)
		}()
	}
	close(release)
	wg.Wait()

	ids, err := cache.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.Equal(t, 1, cache.Len())
}

func TestCollectionCache_DoesNotCacheErrors(t *testing.T) {
	fail := true
	cache := NewCollectionCache(func(_ context.Context, id int) ([]string, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []string{"9"}, nil
	})

	_, err := cache.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Zero(t, cache.Len())

	fail = false
	ids, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, ids)
}
