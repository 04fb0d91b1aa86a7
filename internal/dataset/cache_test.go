package dataset

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trazeinos/ibex35-dashboard/internal/shared/testutil"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

type recordingObserver struct {
	mu     sync.Mutex
	loads  []LoadEvent
	hits   int
	misses int
}

func (o *recordingObserver) OnLoad(_ context.Context, ev LoadEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loads = append(o.loads, ev)
}

func (o *recordingObserver) OnCacheAccess(_ context.Context, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func TestCache_GetMemoizes(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleCSV)
	obs := &recordingObserver{}
	cache := NewCache(path, nil, testutil.DiscardLogger(), WithObserver(obs))
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, cache.Current())
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
	require.Len(t, obs.loads, 1)
	assert.True(t, obs.loads[0].Changed)
	assert.Equal(t, 7, obs.loads[0].Rows)
}

func TestCache_ReloadsOnChange(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleCSV)
	cache := NewCache(path, nil, testutil.DiscardLogger())
	ctx := context.Background()

	first, err := cache.Get(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(testutil.CSV("2024-01-01,17:35:00,BBVA,9.10")), 0o644))

	second, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"BBVA"}, second.Tickers())
}

func TestCache_RefreshKeepsUnchangedContent(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleCSV)
	cache := NewCache(path, nil, testutil.DiscardLogger())
	ctx := context.Background()

	changed, err := cache.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	first := cache.Current()

	changed, err = cache.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, err = cache.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, first, cache.Current())
}

func TestCache_Invalidate(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleCSV)
	var calls atomic.Int32
	loader := func(p string) (*domain.Dataset, error) {
		calls.Add(1)
		return LoadFile(p)
	}
	cache := NewCache(path, loader, testutil.DiscardLogger())
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	cache.Invalidate()
	assert.Nil(t, cache.Current())

	_, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_ConcurrentGet(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleCSV)
	cache := NewCache(path, nil, testutil.DiscardLogger())
	ctx := context.Background()

	const workers = 16
	results := make([]*domain.Dataset, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := cache.Get(ctx)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
}

func TestCache_MissingFile(t *testing.T) {
	path := testutil.WriteCSV(t, testutil.SampleCSV)
	cache := NewCache(path, nil, testutil.DiscardLogger())
	require.NoError(t, os.Remove(path))

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = cache.Refresh(context.Background())
	assert.Error(t, err)
}

func TestCache_ServesLastGoodDataset(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(t *testing.T, path string)
	}{
		{
			name: "corrupt rewrite",
			mutate: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("Fecha,Ticker\n2024-01-01,SAN\n"), 0o644))
			},
		},
		{
			name: "file removed",
			mutate: func(t *testing.T, path string) {
				require.NoError(t, os.Remove(path))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteCSV(t, testutil.SampleCSV)
			logger, logs := testutil.NewTestLogger(t)
			cache := NewCache(path, nil, logger)
			ctx := context.Background()

			good, err := cache.Get(ctx)
			require.NoError(t, err)

			tt.mutate(t, path)

			got, err := cache.Get(ctx)
			require.NoError(t, err)
			assert.Same(t, good, got)
			assert.True(t, logs.ContainsMessage("serving last good dataset"))

			_, err = cache.Refresh(ctx)
			assert.Error(t, err, "refresh still reports the failure")
			assert.Same(t, good, cache.Current())

			require.NoError(t, os.WriteFile(path, []byte(testutil.CSV("2024-01-05,17:35:00,TEF,4.00")), 0o644))
			later := time.Now().Add(time.Hour)
			require.NoError(t, os.Chtimes(path, later, later))

			fixed, err := cache.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"TEF"}, fixed.Tickers())
		})
	}
}

func TestCache_CorruptFileWithoutPriorLoad(t *testing.T) {
	cache := NewCache(testutil.WriteCSV(t, "Fecha,Ticker\n2024-01-01,SAN\n"), nil, testutil.DiscardLogger())

	ds, err := cache.Get(context.Background())

	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestCache_CanceledContext(t *testing.T) {
	cache := NewCache(testutil.WriteCSV(t, testutil.SampleCSV), nil, testutil.DiscardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
