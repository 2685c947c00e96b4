// Package databasetest provides an in-memory database.Client for tests.
// Rows are held as their JSON form, so column names are the models' json
// names, which match their database columns.
package databasetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/academic-portfolio-backend/database"
	"github.com/rpupo63/academic-portfolio-backend/errs"
)

type record map[string]any

// MemoryClient implements database.Client over maps. Failures can be
// injected per table and operation with FailNext.
type MemoryClient struct {
	mu     sync.Mutex
	tables map[string][]record
	fail   map[string][]error
	calls  map[string]int
	now    func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		tables: map[string][]record{},
		fail:   map[string][]error{},
		calls:  map[string]int{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func opKey(op, table string) string { return op + ":" + table }

// FailNext makes the next call of op ("select", "count", "insert", "update",
// "delete") on table return err.
func (m *MemoryClient) FailNext(op, table string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := opKey(op, table)
	m.fail[k] = append(m.fail[k], err)
}

// Calls reports how many times op ran against table.
func (m *MemoryClient) Calls(op, table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[opKey(op, table)]
}

// Seed stores rows (any slice of models) without counting a call.
func (m *MemoryClient) Seed(table string, rows any) {
	recs, err := toRecords(rows)
	if err != nil {
		panic(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		m.stamp(r)
	}
	m.tables[table] = append(m.tables[table], recs...)
}

// Len returns the number of rows in table.
func (m *MemoryClient) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

func (m *MemoryClient) begin(op, table string) error {
	k := opKey(op, table)
	m.calls[k]++
	if q := m.fail[k]; len(q) > 0 {
		m.fail[k] = q[1:]
		return q[0]
	}
	return nil
}

func (m *MemoryClient) stamp(r record) {
	if id, _ := r["id"].(string); id == "" || id == uuid.Nil.String() {
		r["id"] = uuid.NewString()
	}
	now := m.now().Format(time.RFC3339Nano)
	for _, col := range []string{"created_at", "updated_at"} {
		if v, _ := r[col].(string); v == "" || strings.HasPrefix(v, "0001-01-01") {
			r[col] = now
		}
	}
}

func (m *MemoryClient) Select(_ context.Context, table string, q database.Query, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("select", table); err != nil {
		return err
	}

	rows := m.match(table, q)
	if q.Order != nil {
		col, asc := q.Order.Column, q.Order.Ascending
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := fmt.Sprint(rows[i][col]), fmt.Sprint(rows[j][col])
			if asc {
				return a < b
			}
			return a > b
		})
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return decode(rows, dest)
}

func (m *MemoryClient) Count(_ context.Context, table string, q database.Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("count", table); err != nil {
		return 0, err
	}
	return int64(len(m.match(table, q))), nil
}

func (m *MemoryClient) Insert(_ context.Context, table string, rows any) error {
	recs, err := toRecords(rows)
	if err != nil {
		return errs.NewDatabaseError("insert", table, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("insert", table); err != nil {
		return err
	}
	for _, r := range recs {
		m.stamp(r)
		if slug, ok := r["slug"]; ok {
			for _, existing := range m.tables[table] {
				if existing["slug"] == slug {
					return errs.NewAlreadyExists(table)
				}
			}
		}
	}
	m.tables[table] = append(m.tables[table], recs...)
	return decode(recs, rows)
}

func (m *MemoryClient) Update(_ context.Context, table string, id uuid.UUID, fields map[string]any, dest any) error {
	patch, err := normalizeFields(fields)
	if err != nil {
		return errs.NewDatabaseError("update", table, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("update", table); err != nil {
		return err
	}
	var out []record
	for _, r := range m.tables[table] {
		if r["id"] != id.String() {
			continue
		}
		for k, v := range patch {
			r[k] = v
		}
		out = append(out, r)
	}
	return decode(out, dest)
}

func (m *MemoryClient) Delete(_ context.Context, table string, ids []uuid.UUID, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("delete", table); err != nil {
		return err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id.String()] = true
	}
	var kept, removed []record
	for _, r := range m.tables[table] {
		if drop[fmt.Sprint(r["id"])] {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return decode(removed, dest)
}

func (m *MemoryClient) match(table string, q database.Query) []record {
	preds := q.Predicates()
	var out []record
	for _, r := range m.tables[table] {
		ok := true
		for _, p := range preds {
			if fmt.Sprint(r[p.Column]) != fmt.Sprint(p.Value) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

func toRecords(rows any) ([]record, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	var recs []record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// normalizeFields gives patch values the JSON form stored rows use.
func normalizeFields(fields map[string]any) (record, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var r record
	return r, json.Unmarshal(b, &r)
}

func decode(rows []record, dest any) error {
	if rows == nil {
		rows = []record{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
