package database

import (
	"reflect"
	"sort"
)

// Order is an ordering directive on a single column.
type Order struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

// Query describes a select against one table: a column projection,
// conjunctive equality filters, an optional ordering and an optional limit.
type Query struct {
	Columns string
	Filters map[string]any
	Order   *Order
	Limit   int
}

// Predicate is one equality filter.
type Predicate struct {
	Column string
	Value  any
}

// Predicates returns the filters that will be applied, sorted by column.
// Entries whose value is nil (including typed nil pointers) are dropped.
func (q Query) Predicates() []Predicate {
	preds := make([]Predicate, 0, len(q.Filters))
	for column, value := range q.Filters {
		if isNil(value) {
			continue
		}
		preds = append(preds, Predicate{Column: column, Value: value})
	}
	sort.Slice(preds, func(i, j int) bool { return preds[i].Column < preds[j].Column })
	return preds
}

// Where returns a copy of q with an extra equality filter.
func (q Query) Where(column string, value any) Query {
	filters := make(map[string]any, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[column] = value
	q.Filters = filters
	return q
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
