package dataset

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/trazeinos/ibex35-dashboard/internal/errors"
	"github.com/trazeinos/ibex35-dashboard/pkg/contracts/domain"
)

// LoadEvent describes one reload of the source file.
type LoadEvent struct {
	Path        string
	Fingerprint uint64
	Rows        int
	Tickers     int
	Changed     bool
	Duration    time.Duration
	At          time.Time
	Err         error
}

// Observer receives cache activity. Implementations must be safe for
// concurrent use.
type Observer interface {
	OnLoad(ctx context.Context, ev LoadEvent)
	OnCacheAccess(ctx context.Context, hit bool)
}

// Option configures a Cache.
type Option func(*Cache)

// WithObserver attaches an observer to the cache.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observer = o
	}
}

type fileStamp struct {
	size    int64
	modTime int64
}

// Cache memoizes the loaded dataset for as long as the source file is
// unchanged. The returned dataset is shared and must not be mutated.
type Cache struct {
	path     string
	load     LoaderFunc
	logger   *slog.Logger
	observer Observer

	mu      sync.RWMutex
	current *domain.Dataset
	stamp   fileStamp

	group singleflight.Group
}

type loadResult struct {
	dataset *domain.Dataset
	changed bool
}

// NewCache creates a cache over path. A nil loader means LoadFile.
func NewCache(path string, loader LoaderFunc, logger *slog.Logger, opts ...Option) *Cache {
	if loader == nil {
		loader = LoadFile
	}
	c := &Cache{
		path:   path,
		load:   loader,
		logger: logger.With(slog.String("component", "dataset_cache")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the watched source path.
func (c *Cache) Path() string {
	return c.path
}

// Current returns the last loaded dataset without touching the file.
func (c *Cache) Current() *domain.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Get returns the dataset, reloading it when the file stamp has moved. When
// the file cannot be read or parsed the last good dataset is served, so an
// error comes back only while nothing has loaded yet.
func (c *Cache) Get(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	current, known := c.current, c.stamp
	c.mu.RUnlock()

	stamp, err := c.statFile()
	if err != nil {
		return c.fallback(ctx, current, err)
	}

	if current != nil && known == stamp {
		c.access(ctx, true)
		return current, nil
	}

	c.access(ctx, false)
	res, err := c.reload(ctx, stamp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return c.fallback(ctx, c.Current(), err)
	}
	return res.dataset, nil
}

func (c *Cache) fallback(ctx context.Context, last *domain.Dataset, err error) (*domain.Dataset, error) {
	if last == nil {
		return nil, err
	}
	c.logger.WarnContext(ctx, "serving last good dataset",
		slog.String("path", c.path),
		slog.String("fingerprint", last.FingerprintHex()),
		slog.String("error", err.Error()))
	return last, nil
}

// Refresh compares the file against the cached copy and reloads it if needed.
// changed is true only when the content fingerprint differs. Unlike Get it
// reports a failed reload even when an earlier dataset is still cached.
func (c *Cache) Refresh(ctx context.Context) (bool, error) {
	stamp, err := c.statFile()
	if err != nil {
		return false, err
	}

	c.mu.RLock()
	unchanged := c.current != nil && c.stamp == stamp
	c.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	res, err := c.reload(ctx, stamp)
	if err != nil {
		return false, err
	}
	return res.changed, nil
}

// Invalidate drops the cached dataset so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.stamp = fileStamp{}
	c.mu.Unlock()
}

func (c *Cache) statFile() (fileStamp, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return fileStamp{}, apperrors.NewStorageError("failed to stat price file", err).WithContext("path", c.path)
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime().UnixNano()}, nil
}

func (c *Cache) reload(ctx context.Context, stamp fileStamp) (loadResult, error) {
	ch := c.group.DoChan(c.path, func() (interface{}, error) {
		return c.loadOnce(ctx, stamp)
	})

	select {
	case <-ctx.Done():
		return loadResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return loadResult{}, res.Err
		}
		return res.Val.(loadResult), nil
	}
}

func (c *Cache) loadOnce(ctx context.Context, stamp fileStamp) (loadResult, error) {
	start := time.Now()
	ds, err := c.load(c.path)
	ev := LoadEvent{
		Path:     c.path,
		Duration: time.Since(start),
		At:       start.UTC(),
		Err:      err,
	}

	if err != nil {
		c.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
		c.notify(ctx, ev)
		return loadResult{}, err
	}

	c.mu.Lock()
	changed := c.current == nil || c.current.Fingerprint != ds.Fingerprint
	if !changed {
		ds = c.current
	}
	c.current = ds
	c.stamp = stamp
	c.mu.Unlock()

	ev.Fingerprint = ds.Fingerprint
	ev.Rows = ds.Len()
	ev.Tickers = len(ds.Tickers())
	ev.Changed = changed

	c.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", c.path),
		slog.Int("rows", ev.Rows),
		slog.Int("tickers", ev.Tickers),
		slog.Bool("changed", changed),
		slog.Duration("duration", ev.Duration))
	c.notify(ctx, ev)

	return loadResult{dataset: ds, changed: changed}, nil
}

func (c *Cache) notify(ctx context.Context, ev LoadEvent) {
	if c.observer != nil {
		c.observer.OnLoad(ctx, ev)
	}
}

func (c *Cache) access(ctx context.Context, hit bool) {
	if c.observer != nil {
		c.observer.OnCacheAccess(ctx, hit)
	}
}
