package content

import (
	"context"

	"github.com/rpupo63/academic-portfolio-backend/errs"
	"github.com/rpupo63/academic-portfolio-backend/models"
	"golang.org/x/sync/errgroup"
)

// Kind selects a slice of the combined content.
type Kind string

const (
	KindBlog        Kind = "blog"
	KindPublication Kind = "publication"
	KindVideo       Kind = "video"
	KindPhoto       Kind = "photo"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBlog, KindPublication, KindVideo, KindPhoto:
		return k, nil
	}
	return "", errs.NewInvalidFieldError("kind", "must be one of blog, publication, video, photo")
}

type Stats struct {
	TotalContent int `json:"total_content"`
	TextBlogs    int `json:"text_blogs"`
	VideoBlogs   int `json:"video_blogs"`
	PhotoBlogs   int `json:"photo_blogs"`
	MixedBlogs   int `json:"mixed_blogs"`
	Publications int `json:"publications"`
	TotalBlogs   int `json:"total_blogs"`
}

// Snapshot is everything the combined content view shows.
type Snapshot struct {
	Blogs        []models.BlogPost    `json:"blogs"`
	Publications []models.Publication `json:"publications"`
	Partitions   Partitions           `json:"partitions"`
	Stats        Stats                `json:"stats"`
}

// Items is the result of ByKind: either posts or publications.
type Items struct {
	Blogs        []models.BlogPost    `json:"blogs,omitempty"`
	Publications []models.Publication `json:"publications,omitempty"`
}

// ByKind picks the posts or publications for k.
func (s Snapshot) ByKind(k Kind) Items {
	switch k {
	case KindBlog:
		return Items{Blogs: s.Blogs}
	case KindPublication:
		return Items{Publications: s.Publications}
	case KindVideo:
		return Items{Blogs: s.Partitions.Video}
	case KindPhoto:
		return Items{Blogs: s.Partitions.Photo}
	}
	return Items{}
}

// Content combines blogs and publications.
type Content struct {
	blogs *Blogs
	pubs  *Publications
}

func NewContent(blogs *Blogs, pubs *Publications) *Content {
	return &Content{blogs: blogs, pubs: pubs}
}

// Load reads blogs and publications concurrently and waits for both.
func (c *Content) Load(ctx context.Context) (Snapshot, error) {
	return c.load(ctx, false)
}

func (c *Content) Refetch(ctx context.Context) (Snapshot, error) {
	return c.load(ctx, true)
}

func (c *Content) load(ctx context.Context, fresh bool) (Snapshot, error) {
	var (
		posts []models.BlogPost
		pubs  []models.Publication
		g     errgroup.Group
	)
	g.Go(func() error {
		var err error
		if fresh {
			posts, err = c.blogs.Refetch(ctx)
		} else {
			posts, err = c.blogs.Load(ctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		if fresh {
			pubs, err = c.pubs.Refetch(ctx)
		} else {
			pubs, err = c.pubs.Load(ctx)
		}
		return err
	})
	err := g.Wait()
	return NewSnapshot(posts, pubs), err
}

func NewSnapshot(posts []models.BlogPost, pubs []models.Publication) Snapshot {
	if posts == nil {
		posts = []models.BlogPost{}
	}
	if pubs == nil {
		pubs = []models.Publication{}
	}
	parts := Partition(posts)
	return Snapshot{
		Blogs:        posts,
		Publications: pubs,
		Partitions:   parts,
		Stats: Stats{
			TotalContent: len(posts) + len(pubs),
			TextBlogs:    len(parts.Text),
			VideoBlogs:   len(parts.Video),
			PhotoBlogs:   len(parts.Photo),
			MixedBlogs:   len(parts.Mixed),
			Publications: len(pubs),
			TotalBlogs:   len(posts),
		},
	}
}
