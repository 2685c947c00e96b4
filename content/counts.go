package content

import (
	"context"
	"errors"
	"sync"
)

type Totals struct {
	Blogs        int64 `json:"blogs_count"`
	Publications int64 `json:"publications_count"`
	Total        int64 `json:"total_count"`
	// Loading is sampled after both reads of this call returned, so it is
	// only true while another caller's count read is still in flight. It is
	// not part of the response body.
	Loading bool `json:"-"`
}

// Counts sums the published post and publication counts.
type Counts struct {
	blogs *Blogs
	pubs  *Publications
}

func NewCounts(blogs *Blogs, pubs *Publications) *Counts {
	return &Counts{blogs: blogs, pubs: pubs}
}

// Load reads both counts. A failure on either side is reported in the
// joined error while the other count is still returned.
func (c *Counts) Load(ctx context.Context) (Totals, error) {
	var (
		t          Totals
		errB, errP error
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		t.Blogs, errB = c.blogs.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		t.Publications, errP = c.pubs.Count(ctx)
	}()
	wg.Wait()

	t.Total = t.Blogs + t.Publications
	t.Loading = c.blogs.count.State().Loading || c.pubs.count.State().Loading
	return t, errors.Join(errB, errP)
}
