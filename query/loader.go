package query

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/retry"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Source is a table that can be read with a database.Query.
// *database.Repository satisfies it.
type Source[T any] interface {
	TableName() string
	Find(ctx context.Context, q database.Query) ([]T, error)
}

// State is what a Loader exposes to callers.
type State[T any] struct {
	Data    []T
	Loading bool
	Err     error
}

type entry[T any] struct {
	key  string
	data []T
	at   time.Time
}

type options struct {
	now    func() time.Time
	logger zerolog.Logger
	retry  *retry.Policy
}

type Option func(*options)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRetry wraps every fetch in retry.Do.
func WithRetry(p retry.Policy) Option {
	return func(o *options) { o.retry = &p }
}

// Loader is a cached reader over one table. It is safe for concurrent use.
type Loader[T any] struct {
	table string
	fetch func(ctx context.Context, q database.Query) ([]T, error)
	opts  options

	mu       sync.Mutex
	last     *Config
	lastKey  string
	cache    *entry[T]
	state    State[T]
	gen      uint64
	inflight int
	flights  singleflight.Group
}

func New[T any](src Source[T], opts ...Option) *Loader[T] {
	return newLoader(src.TableName(), src.Find, opts...)
}

func newLoader[T any](table string, fetch func(context.Context, database.Query) ([]T, error), opts ...Option) *Loader[T] {
	o := options{
		now:    time.Now,
		logger: log.With().Str("component", "query").Str("table", table).Logger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[T]{table: table, fetch: fetch, opts: o}
}

func (l *Loader[T]) Table() string {
	return l.table
}

// State returns a snapshot of the loader's state.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load returns the rows described by cfg. A disabled config performs no
// read and yields nil data. A read with the same key as the cached one
// inside its cache window is served from the cache. On failure the previous
// data is kept and returned with the error.
func (l *Loader[T]) Load(ctx context.Context, cfg Config) ([]T, error) {
	cfg = cfg.withDefaults()
	key := cfg.Key(l.table)

	l.mu.Lock()
	l.last = &cfg
	l.lastKey = key

	if !cfg.enabled() {
		l.state = State[T]{}
		l.mu.Unlock()
		return nil, nil
	}

	// A cache hit leaves Err as it was; only a completed read clears it.
	if c := l.cache; c != nil && key != "" && c.key == key && l.opts.now().Sub(c.at) < cfg.CacheTime {
		l.state.Data = c.data
		l.state.Loading = l.inflight > 0
		l.mu.Unlock()
		l.opts.logger.Debug().Str("key", key).Msg("cache hit")
		return c.data, nil
	}

	l.inflight++
	l.state.Loading = true
	gen := l.gen
	l.mu.Unlock()
	l.opts.logger.Debug().Str("key", key).Msg("cache miss")

	rows, err := l.do(ctx, key, gen, cfg.Query())

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight--
	l.state.Loading = l.inflight > 0

	// Rows read before an invalidation are returned to their caller but
	// never cached.
	current := l.lastKey == key && l.gen == gen
	if err != nil {
		if !current {
			return nil, err
		}
		l.state.Err = err
		return l.state.Data, err
	}

	// A slower read for a config that has since been replaced must not
	// overwrite the newer state.
	if current {
		l.cache = &entry[T]{key: key, data: rows, at: l.opts.now()}
		l.state = State[T]{Data: rows, Loading: l.inflight > 0}
	}
	return rows, nil
}

func (l *Loader[T]) do(ctx context.Context, key string, gen uint64, q database.Query) ([]T, error) {
	fetch := func() ([]T, error) {
		if l.opts.retry == nil {
			return l.fetch(ctx, q)
		}
		return retry.Do(ctx, *l.opts.retry, func(ctx context.Context) ([]T, error) {
			return l.fetch(ctx, q)
		})
	}
	if key == "" {
		return fetch()
	}

	// Reads only share a flight within one cache generation, so a refetch
	// never joins a read that started before it.
	v, err, _ := l.flights.Do(key+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		return fetch()
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

// Refetch drops the cache and reads again with the last config. Before
// any Load it returns the current data.
func (l *Loader[T]) Refetch(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	if l.last == nil {
		data := l.state.Data
		l.mu.Unlock()
		return data, nil
	}
	cfg := *l.last
	l.cache = nil
	l.gen++
	l.mu.Unlock()

	return l.Load(ctx, cfg)
}

// Invalidate drops the cached rows without reading.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	l.cache = nil
	l.gen++
	l.mu.Unlock()
}

// Mutate replaces the data locally, as if it had just been read. The cache
// window restarts.
func (l *Loader[T]) Mutate(data []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Data = data
	l.state.Err = nil
	l.gen++
	l.cache = &entry[T]{key: l.lastKey, data: data, at: l.opts.now()}
}

// LoadSingle reads the row with the given id. It fails with a not-found
// error when there is none. Use a dedicated Loader for single reads, as they
// share the cache slot with list reads.
func (l *Loader[T]) LoadSingle(ctx context.Context, id any, cfg Config) (*T, error) {
	filters := make(map[string]any, len(cfg.Filters)+1)
	for k, v := range cfg.Filters {
		filters[k] = v
	}
	filters["id"] = id
	cfg.Filters = filters
	cfg.Limit = 1

	rows, err := l.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.enabled() {
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, errs.NewNotFound(l.table)
	}
	return &rows[0], nil
}
