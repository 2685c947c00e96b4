package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mozillazg/go-unidecode"
)

// BlogPost represents a blog post with its optional media attachments
type BlogPost struct {
	ID               uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title            string         `json:"title" db:"title" gorm:"column:title;type:text;not null"`
	Slug             string         `json:"slug" db:"slug" gorm:"column:slug;type:text;not null;uniqueIndex"`
	Excerpt          string         `json:"excerpt" db:"excerpt" gorm:"column:excerpt;type:text"`
	Content          string         `json:"content" db:"content" gorm:"column:content;type:text"`
	ThumbnailURL     string         `json:"thumbnail_url" db:"thumbnail_url" gorm:"column:thumbnail_url;type:text"`
	Tags             pq.StringArray `json:"tags" db:"tags" gorm:"column:tags;type:text[]"`
	Published        bool           `json:"published" db:"published" gorm:"column:published;not null;default:false"`
	ContentType      ContentType    `json:"content_type" db:"content_type" gorm:"column:content_type;type:text;not null;default:'text'"`
	VideoURL         *string        `json:"video_url,omitempty" db:"video_url" gorm:"column:video_url;type:text"`
	PhotoURLs        pq.StringArray `json:"photo_urls,omitempty" db:"photo_urls" gorm:"column:photo_urls;type:text[]"`
	MediaDescription *string        `json:"media_description,omitempty" db:"media_description" gorm:"column:media_description;type:text"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (BlogPost) TableName() string { return "blog_posts" }

func (p BlogPost) GetID() uuid.UUID { return p.ID }

// Normalize fills the defaults a row may be missing when it comes back from
// the database. It runs once, at the decode boundary.
func (p *BlogPost) Normalize() {
	p.ContentType = p.ContentType.OrDefault()
	if p.Tags == nil {
		p.Tags = pq.StringArray{}
	}
}

// Paragraphs splits the content on newlines, dropping blank lines.
func (p BlogPost) Paragraphs() []string {
	var out []string
	for _, line := range strings.Split(p.Content, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	slugUnsafe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	urlSafeSlug   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify derives a URL-safe slug from a title. Letters are transliterated to
// ASCII, anything other than letters, digits, spaces and hyphens is dropped,
// and whitespace runs become a single hyphen.
// "My New Article" becomes "my-new-article", "Über Forschung" "uber-forschung".
func Slugify(title string) string {
	s := strings.ToLower(unidecode.Unidecode(strings.TrimSpace(title)))
	s = slugUnsafe.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s only contains lower-case letters, digits and
// single inner hyphens.
func ValidSlug(s string) bool {
	return urlSafeSlug.MatchString(s)
}

// EnsureSlug sets the slug from the title when none was supplied.
func (p *BlogPost) EnsureSlug() {
	if strings.TrimSpace(p.Slug) == "" {
		p.Slug = Slugify(p.Title)
		return
	}
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
}

// ParseTags splits a comma separated tag list, trimming each entry and
// dropping empty ones.
func ParseTags(csv string) []string {
	tags := []string{}
	for _, t := range strings.Split(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
