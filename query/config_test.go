package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsDeterministic(t *testing.T) {
	a := Config{Filters: map[string]any{"published": true, "content_type": "video", "slug": nil}}
	b := Config{Filters: map[string]any{"content_type": "video", "published": true}, Columns: "*"}

	assert.Equal(t, a.Key("blog_posts"), b.Key("blog_posts"))
	assert.Equal(t,
		`{"table":"blog_posts","columns":"*","filters":{"content_type":"video","published":true},"order":null,"limit":0}`,
		a.Key("blog_posts"))
}

func TestKeyDistinguishesReads(t *testing.T) {
	base := Config{Filters: map[string]any{"published": true}}
	keys := map[string]bool{
		base.Key("blog_posts"):   true,
		base.Key("publications"): true,
		Config{Filters: map[string]any{"published": false}}.Key("blog_posts"):            true,
		Config{Filters: base.Filters, Order: Descending("created_at")}.Key("blog_posts"): true,
		Config{Filters: base.Filters, Order: Ascending("created_at")}.Key("blog_posts"):  true,
		Config{Filters: base.Filters, Limit: 10}.Key("blog_posts"):                       true,
		Config{Filters: base.Filters, Columns: "id,title"}.Key("blog_posts"):             true,
	}
	assert.Len(t, keys, 7)
}

func TestKeyIgnoresCacheSettings(t *testing.T) {
	a := Config{CacheTime: 1}
	b := Config{Enabled: Enabled(false)}
	assert.Equal(t, a.Key("resume"), b.Key("resume"))
}

func TestDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, "*", c.Columns)
	assert.Equal(t, DefaultCacheTime, c.CacheTime)
	assert.True(t, c.enabled())
}
