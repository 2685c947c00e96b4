// Package query caches table reads for the HTTP layer. A Loader owns a single
// cache slot: repeating the last read inside its cache window is served
// locally, anything else goes to the database.
package query

import (
	"encoding/json"
	"time"

	"github.com/rpupo63/academic-portfolio-backend/database"
)

const (
	DefaultColumns   = "*"
	DefaultCacheTime = 5 * time.Minute
)

// Config describes one read. The table comes from the Loader's source.
type Config struct {
	Columns   string
	Filters   map[string]any
	Order     *database.Order
	Limit     int
	CacheTime time.Duration
	Enabled   *bool
}

// Enabled is a helper for Config.Enabled.
func Enabled(b bool) *bool {
	return &b
}

// Ascending and Descending build an Order.
func Ascending(column string) *database.Order {
	return &database.Order{Column: column, Ascending: true}
}

func Descending(column string) *database.Order {
	return &database.Order{Column: column, Ascending: false}
}

func (c Config) withDefaults() Config {
	if c.Columns == "" {
		c.Columns = DefaultColumns
	}
	if c.CacheTime <= 0 {
		c.CacheTime = DefaultCacheTime
	}
	if c.Enabled == nil {
		c.Enabled = Enabled(true)
	}
	return c
}

func (c Config) enabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Query converts the config into the database read it describes.
func (c Config) Query() database.Query {
	c = c.withDefaults()
	return database.Query{
		Columns: c.Columns,
		Filters: c.Filters,
		Order:   c.Order,
		Limit:   c.Limit,
	}
}

type cacheKey struct {
	Table   string          `json:"table"`
	Columns string          `json:"columns"`
	Filters map[string]any  `json:"filters"`
	Order   *database.Order `json:"order"`
	Limit   int             `json:"limit"`
}

// Key serializes everything that identifies the read. Two configs with the
// same key fetch the same rows. Filters are emitted in sorted key order and
// nil filters are left out, as they are never applied.
func (c Config) Key(table string) string {
	c = c.withDefaults()
	filters := make(map[string]any, len(c.Filters))
	for _, p := range c.Query().Predicates() {
		filters[p.Column] = p.Value
	}
	b, err := json.Marshal(cacheKey{
		Table:   table,
		Columns: c.Columns,
		Filters: filters,
		Order:   c.Order,
		Limit:   c.Limit,
	})
	if err != nil {
		// Unserializable filter values never share a cache entry.
		return ""
	}
	return string(b)
}
