package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID uuid.UUID
	N  int
}

type fakeTable struct {
	mu          sync.Mutex
	insertSizes []int
	deleteSizes []int
	updated     []uuid.UUID
	failCall    map[int]error // by call number, 1-based
	failID      map[uuid.UUID]error
	calls       int
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeTable) TableName() string { return "experience" }

func (f *fakeTable) next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.failCall[f.calls]
}

func (f *fakeTable) Insert(_ context.Context, rows []item) ([]item, error) {
	f.mu.Lock()
	f.insertSizes = append(f.insertSizes, len(rows))
	f.mu.Unlock()
	if err := f.next(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *fakeTable) Update(_ context.Context, id uuid.UUID, fields map[string]any) ([]item, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.updated = append(f.updated, id)
	err := f.failID[id]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return []item{{ID: id, N: fields["n"].(int)}}, nil
}

func (f *fakeTable) Delete(_ context.Context, ids []uuid.UUID) ([]item, error) {
	f.mu.Lock()
	f.deleteSizes = append(f.deleteSizes, len(ids))
	f.mu.Unlock()
	if err := f.next(); err != nil {
		return nil, err
	}
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item{ID: id}
	}
	return out, nil
}

func items(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{ID: uuid.New(), N: i}
	}
	return out
}

func TestChunks(t *testing.T) {
	chunks := Chunks([]int{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks)
	assert.Empty(t, Chunks([]int{}, 2))
	assert.Len(t, Chunks(make([]int, 250), 0), 3)
}

func TestInsertChunksInOrder(t *testing.T) {
	table := &fakeTable{}
	rows := items(250)

	res := Insert[item](context.Background(), table, rows, Options{Size: 100})

	assert.Equal(t, []int{100, 100, 50}, table.insertSizes)
	require.NoError(t, res.Err())
	assert.Equal(t, rows, res.Data())
}

func TestDeletePartialFailure(t *testing.T) {
	table := &fakeTable{failCall: map[int]error{1: errs.NewApiErr(500, "chunk one")}}
	ids := make([]uuid.UUID, 4)
	for i := range ids {
		ids[i] = uuid.New()
	}

	res := Delete[item](context.Background(), table, ids, Options{Size: 2})

	require.Len(t, res.Data(), 2)
	assert.Equal(t, ids[2], res.Data()[0].ID)
	assert.Equal(t, ids[3], res.Data()[1].ID)

	err := res.Err()
	require.Error(t, err)
	assert.True(t, errs.IsPartialFailureError(err))
	assert.Equal(t, "500", errs.Code(err))
}

func TestAllChunksFail(t *testing.T) {
	first := errs.NewApiErr(400, "bad row")
	table := &fakeTable{failCall: map[int]error{1: first, 2: errors.New("second")}}

	res := Insert[item](context.Background(), table, items(3), Options{Size: 2})

	assert.Nil(t, res.Data())
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, first, res.Err())
}

func TestEmptyInput(t *testing.T) {
	table := &fakeTable{}
	res := Delete[item](context.Background(), table, nil, Options{})

	assert.Nil(t, res.Data())
	assert.NoError(t, res.Err())
	assert.Empty(t, table.deleteSizes)
}

func TestUpdateConcurrentWithinChunkSequentialAcross(t *testing.T) {
	rows := items(6)
	patches := make([]Patch, len(rows))
	for i, r := range rows {
		patches[i] = Patch{ID: r.ID, Fields: map[string]any{"n": i * 10}}
	}
	failing := rows[4].ID
	table := &fakeTable{failID: map[uuid.UUID]error{failing: errs.NewApiErr(503, "lost")}}

	res := Update[item](context.Background(), table, patches, Options{Size: 3})

	assert.LessOrEqual(t, table.maxInFlight.Load(), int32(3))
	assert.Greater(t, table.maxInFlight.Load(), int32(1))
	assert.Len(t, table.updated, 6)

	require.Len(t, res.Data(), 5)
	for i, r := range res.Data() {
		want := i
		if i >= 4 {
			want = i + 1
		}
		assert.Equal(t, rows[want].ID, r.ID, "rows keep input order")
	}
	assert.True(t, errs.IsPartialFailureError(res.Err()))
}

func TestRetryComposedPerChunk(t *testing.T) {
	table := &fakeTable{failCall: map[int]error{1: errs.NewApiErr(503, "flaky")}}
	policy := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}

	res := Insert[item](context.Background(), table, items(2), Options{Size: 2, Retry: &policy})

	require.NoError(t, res.Err())
	assert.Len(t, res.Data(), 2)
	assert.Equal(t, []int{2, 2}, table.insertSizes)
}
