package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"My New Article":                "my-new-article",
		"  Padded   Title ":             "padded-title",
		"Tabs\tand\nnewlines":           "tabs-and-newlines",
		"already-slugged":               "already-slugged",
		"Drops? Punctuation!":           "drops-punctuation",
		"What's new in C++?":            "whats-new-in-c",
		"Hello, World! How's it going?": "hello-world-hows-it-going",
		"Über Forschung":                "uber-forschung",
		"Café - Notes":                  "cafe-notes",
		"--Edge--Hyphens--":             "edge-hyphens",
		"?!":                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("my-new-article"))
	assert.True(t, ValidSlug("post-2024"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("Upper"))
	assert.False(t, ValidSlug("double--hyphen"))
	assert.False(t, ValidSlug("-leading"))
	assert.False(t, ValidSlug("a/b"))
}

func TestEnsureSlug(t *testing.T) {
	p := BlogPost{Title: "Hello World"}
	p.EnsureSlug()
	assert.Equal(t, "hello-world", p.Slug)

	p = BlogPost{Title: "Hello World", Slug: " Custom-Slug "}
	p.EnsureSlug()
	assert.Equal(t, "custom-slug", p.Slug)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "supabase"}, ParseTags(" go, ,supabase,"))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestParagraphs(t *testing.T) {
	p := BlogPost{Content: "first\n\n  \nsecond\n"}
	assert.Equal(t, []string{"first", "second"}, p.Paragraphs())
}

func TestContentType(t *testing.T) {
	ct, err := ParseContentType("")
	require.NoError(t, err)
	assert.Equal(t, ContentText, ct)

	_, err = ParseContentType("audio")
	assert.Error(t, err)

	var post BlogPost
	require.NoError(t, json.Unmarshal([]byte(`{"content_type":null}`), &post))
	assert.Equal(t, ContentText, post.ContentType)
	assert.Error(t, json.Unmarshal([]byte(`{"content_type":"podcast"}`), &post))

	var scanned ContentType
	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, ContentText, scanned)
	require.NoError(t, scanned.Scan([]byte("photo")))
	assert.Equal(t, ContentPhoto, scanned)
	assert.Error(t, scanned.Scan(42))

	v, err := ContentType("").Value()
	require.NoError(t, err)
	assert.Equal(t, "text", v)
	assert.False(t, ContentType("").Valid())
}

func TestNormalize(t *testing.T) {
	p := BlogPost{}
	p.Normalize()
	assert.Equal(t, ContentText, p.ContentType)
	assert.NotNil(t, p.Tags)

	pub := Publication{}
	pub.Normalize()
	assert.Equal(t, DefaultPublicationType, pub.Type)
}

func TestFoldMedia(t *testing.T) {
	existing := "https://x/keep.mp4"
	p := BlogPost{VideoURL: &existing}
	FoldMedia(&p, []MediaFile{
		{URL: "https://x/a.png", Type: MediaImage},
		{URL: "https://x/new.mp4", Type: MediaVideo},
	})
	assert.Equal(t, []string{"https://x/a.png"}, []string(p.PhotoURLs))
	assert.Equal(t, existing, *p.VideoURL)
}

func TestKindForContentType(t *testing.T) {
	k, ok := KindForContentType("image/webp")
	assert.True(t, ok)
	assert.Equal(t, MediaImage, k)

	k, ok = KindForContentType("video/mp4")
	assert.True(t, ok)
	assert.Equal(t, MediaVideo, k)

	_, ok = KindForContentType("application/pdf")
	assert.False(t, ok)
}

func TestAdminUserHidesPasswordHash(t *testing.T) {
	b, err := json.Marshal(AdminUser{Username: "admin", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}

func TestModelColumns(t *testing.T) {
	assert.Equal(t,
		[]string{"id", "pdf_url", "created_at", "updated_at"},
		ModelColumns(&Resume{}))
	assert.Equal(t, []string{"count"}, ModelColumns(Count{}))
}

func TestFindColumnMismatches(t *testing.T) {
	got := FindColumnMismatches(
		[]string{"id", "title", "legacy_col", "other"},
		ModelColumns(Publication{}),
	)
	assert.Equal(t, []string{"legacy_col", "other"}, got)
	assert.Nil(t, FindColumnMismatches([]string{"id"}, []string{"id"}))
}

func TestAllCoversEveryTable(t *testing.T) {
	names := map[string]bool{}
	for _, m := range All() {
		names[m.(interface{ TableName() string }).TableName()] = true
	}
	for _, table := range []string{"blog_posts", "publications", "resume", "experience", "admin_users"} {
		assert.True(t, names[table], table)
	}
}
