package content

import "github.com/rpupo63/academic-portfolio-backend/models"

// Partitions groups blog posts by content type. Every post lands in exactly
// one group.
type Partitions struct {
	Text  []models.BlogPost `json:"text"`
	Video []models.BlogPost `json:"video"`
	Photo []models.BlogPost `json:"photo"`
	Mixed []models.BlogPost `json:"mixed"`
}

// Partition splits posts by content type, keeping their order. A post with
// no content type counts as text.
func Partition(posts []models.BlogPost) Partitions {
	p := Partitions{
		Text:  []models.BlogPost{},
		Video: []models.BlogPost{},
		Photo: []models.BlogPost{},
		Mixed: []models.BlogPost{},
	}
	for _, post := range posts {
		switch post.ContentType.OrDefault() {
		case models.ContentVideo:
			p.Video = append(p.Video, post)
		case models.ContentPhoto:
			p.Photo = append(p.Photo, post)
		case models.ContentMixed:
			p.Mixed = append(p.Mixed, post)
		default:
			p.Text = append(p.Text, post)
		}
	}
	return p
}

// ByType returns the group for ct, or nil for an unknown type.
func (p Partitions) ByType(ct models.ContentType) []models.BlogPost {
	switch ct.OrDefault() {
	case models.ContentText:
		return p.Text
	case models.ContentVideo:
		return p.Video
	case models.ContentPhoto:
		return p.Photo
	case models.ContentMixed:
		return p.Mixed
	}
	return nil
}

func (p Partitions) CountByType(ct models.ContentType) int {
	return len(p.ByType(ct))
}
