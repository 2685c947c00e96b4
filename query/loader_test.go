package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    int
	Title string
}

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	queries []database.Query
	rows    []row
	err     error
	count   int64
}

func (f *fakeSource) TableName() string { return "blog_posts" }

func (f *fakeSource) Find(_ context.Context, q database.Query) ([]row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeSource) Count(_ context.Context, q database.Query) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	return f.count, f.err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLoader(src *fakeSource) (*Loader[row], *clock) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New[row](src, WithClock(clk.Now)), clk
}

func published() Config {
	return Config{Filters: map[string]any{"published": true}, Order: Descending("created_at")}
}

func TestLoadFetchesAndCaches(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}, {ID: 2}}}
	l, clk := newTestLoader(src)
	ctx := context.Background()

	rows, err := l.Load(ctx, published())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, src.Calls())

	clk.Advance(4 * time.Minute)
	rows, err = l.Load(ctx, published())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, src.Calls(), "second read inside the window is served from cache")

	st := l.State()
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.Len(t, st.Data, 2)
}

func TestLoadRefetchesAfterCacheTime(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}}}
	l, clk := newTestLoader(src)
	ctx := context.Background()

	_, err := l.Load(ctx, published())
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	_, err = l.Load(ctx, published())
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())
}

func TestCustomCacheTime(t *testing.T) {
	src := &fakeSource{}
	l, clk := newTestLoader(src)
	cfg := published()
	cfg.CacheTime = time.Second

	_, _ = l.Load(context.Background(), cfg)
	clk.Advance(2 * time.Second)
	_, _ = l.Load(context.Background(), cfg)
	assert.Equal(t, 2, src.Calls())
}

func TestDifferentConfigFetches(t *testing.T) {
	src := &fakeSource{}
	l, _ := newTestLoader(src)
	ctx := context.Background()

	_, _ = l.Load(ctx, published())
	other := published()
	other.Limit = 3
	_, _ = l.Load(ctx, other)
	assert.Equal(t, 2, src.Calls())

	// single slot: going back to the first config is a miss again
	_, _ = l.Load(ctx, published())
	assert.Equal(t, 3, src.Calls())
}

func TestDisabledDoesNotFetch(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}}}
	l, _ := newTestLoader(src)

	cfg := published()
	cfg.Enabled = Enabled(false)
	rows, err := l.Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Equal(t, 0, src.Calls())
	assert.Equal(t, State[row]{}, l.State())
}

func TestErrorKeepsPreviousData(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}}}
	l, _ := newTestLoader(src)
	ctx := context.Background()

	_, err := l.Load(ctx, published())
	require.NoError(t, err)

	src.err = errs.NewApiErr(503, "down")
	rows, err := l.Refetch(ctx)
	require.Error(t, err)
	assert.Equal(t, []row{{ID: 1}}, rows)

	st := l.State()
	assert.False(t, st.Loading)
	assert.Equal(t, err, st.Err)
	assert.Equal(t, []row{{ID: 1}}, st.Data)
}

func TestRefetchBypassesCache(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}}}
	l, _ := newTestLoader(src)
	ctx := context.Background()

	_, _ = l.Load(ctx, published())
	src.rows = []row{{ID: 1}, {ID: 2}}

	rows, err := l.Refetch(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, src.Calls())
	assert.Equal(t, database.Query{
		Columns: "*",
		Filters: map[string]any{"published": true},
		Order:   &database.Order{Column: "created_at"},
	}, src.queries[1])
}

func TestRefetchBeforeLoad(t *testing.T) {
	src := &fakeSource{}
	l, _ := newTestLoader(src)

	rows, err := l.Refetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Equal(t, 0, src.Calls())
}

func TestMutateRestartsWindow(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}}}
	l, clk := newTestLoader(src)
	ctx := context.Background()

	_, _ = l.Load(ctx, published())
	clk.Advance(4 * time.Minute)

	l.Mutate([]row{{ID: 9}})
	assert.Equal(t, []row{{ID: 9}}, l.State().Data)

	clk.Advance(4 * time.Minute)
	rows, err := l.Load(ctx, published())
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 9}}, rows)
	assert.Equal(t, 1, src.Calls())
}

func TestLoadSingle(t *testing.T) {
	id := uuid.New()
	src := &fakeSource{rows: []row{{ID: 7, Title: "one"}}}
	l, _ := newTestLoader(src)

	got, err := l.LoadSingle(context.Background(), id, Config{})
	require.NoError(t, err)
	assert.Equal(t, 7, got.ID)
	assert.Equal(t, id, src.queries[0].Filters["id"])
	assert.Equal(t, 1, src.queries[0].Limit)

	src.rows = nil
	l2, _ := newTestLoader(src)
	_, err = l2.LoadSingle(context.Background(), id, Config{})
	assert.True(t, errs.IsNotFound(err))
}

func TestCountLoader(t *testing.T) {
	src := &fakeSource{count: 12}
	c := NewCount(src)
	ctx := context.Background()

	n, err := c.Count(ctx, Config{Filters: map[string]any{"published": true}})
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)
	assert.EqualValues(t, 12, c.Value())
	assert.Equal(t, "count", src.queries[0].Columns)

	_, _ = c.Count(ctx, Config{Filters: map[string]any{"published": true}})
	assert.Equal(t, 1, src.Calls())
}

func TestWithRetry(t *testing.T) {
	src := &flakySource{failures: 2}
	l := New[row](src, WithRetry(retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}))

	rows, err := l.Load(context.Background(), Config{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, src.calls)
}

type flakySource struct {
	calls    int
	failures int
}

func (f *flakySource) TableName() string { return "publications" }

func (f *flakySource) Find(context.Context, database.Query) ([]row, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return []row{{ID: 1}}, nil
}

func TestConcurrentLoadsShareOneRead(t *testing.T) {
	src := &blockingSource{release: make(chan struct{})}
	l := New[row](src)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Load(context.Background(), published())
		}()
	}
	// give the goroutines time to join the in-flight read
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, 1, src.Calls())
}

type blockingSource struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (b *blockingSource) TableName() string { return "blog_posts" }

func (b *blockingSource) Find(context.Context, database.Query) ([]row, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return []row{{ID: 1}}, nil
}

func (b *blockingSource) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

type versionedSource struct {
	mu      sync.Mutex
	calls   int
	version int
	block   chan struct{}
}

func (v *versionedSource) TableName() string { return "blog_posts" }

func (v *versionedSource) Find(context.Context, database.Query) ([]row, error) {
	v.mu.Lock()
	v.calls++
	seen := v.version
	first := v.calls == 1
	v.mu.Unlock()
	if first {
		<-v.block
	}
	return []row{{ID: seen}}, nil
}

func (v *versionedSource) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func (v *versionedSource) Commit(version int) {
	v.mu.Lock()
	v.version = version
	v.mu.Unlock()
}

func TestRefetchDoesNotJoinOlderRead(t *testing.T) {
	src := &versionedSource{version: 1, block: make(chan struct{})}
	l := New[row](src)
	ctx := context.Background()

	stale := make(chan []row, 1)
	go func() {
		rows, _ := l.Load(ctx, published())
		stale <- rows
	}()
	require.Eventually(t, func() bool { return src.Calls() == 1 }, time.Second, time.Millisecond)

	src.Commit(2)
	rows, err := l.Refetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 2}}, rows)

	close(src.block)
	assert.Equal(t, []row{{ID: 1}}, <-stale)

	rows, err = l.Load(ctx, published())
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 2}}, rows)
	assert.Equal(t, 2, src.Calls())
	st := l.State()
	assert.Equal(t, []row{{ID: 2}}, st.Data)
	assert.False(t, st.Loading)
}

func TestInvalidateDuringReadClearsLoading(t *testing.T) {
	src := &versionedSource{version: 1, block: make(chan struct{})}
	l := New[row](src)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Load(context.Background(), published())
	}()
	require.Eventually(t, func() bool { return l.State().Loading }, time.Second, time.Millisecond)

	l.Invalidate()
	close(src.block)
	<-done

	st := l.State()
	assert.False(t, st.Loading)
	assert.Nil(t, st.Data, "rows read before the invalidation are not kept")
}

func TestCacheHitKeepsError(t *testing.T) {
	src := &fakeSource{rows: []row{{ID: 1}}}
	l, _ := newTestLoader(src)
	ctx := context.Background()

	_, err := l.Load(ctx, published())
	require.NoError(t, err)

	src.err = errs.NewApiErr(503, "down")
	other := published()
	other.Limit = 10
	_, err = l.Load(ctx, other)
	require.Error(t, err)

	rows, err := l.Load(ctx, published())
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 1}}, rows)
	assert.Equal(t, 2, src.Calls())

	st := l.State()
	assert.False(t, st.Loading)
	assert.Error(t, st.Err)
}
