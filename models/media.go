package models

import "strings"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaFile is an uploaded file that has not been attached to a saved post
// yet. It is never persisted on its own.
type MediaFile struct {
	ID   string    `json:"id"`
	URL  string    `json:"url"`
	Type MediaKind `json:"type"`
	Name string    `json:"name"`
	Size int64     `json:"size"`
}

// KindForContentType maps an upload's MIME type to a media kind. ok is false
// for anything that is neither an image nor a video.
func KindForContentType(mime string) (MediaKind, bool) {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaImage, true
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo, true
	}
	return "", false
}

// FoldMedia attaches uploaded media to the post: images are appended to
// PhotoURLs in order, the first video becomes VideoURL unless one is set.
func FoldMedia(p *BlogPost, files []MediaFile) {
	for _, f := range files {
		switch f.Type {
		case MediaImage:
			p.PhotoURLs = append(p.PhotoURLs, f.URL)
		case MediaVideo:
			if p.VideoURL == nil || *p.VideoURL == "" {
				u := f.URL
				p.VideoURL = &u
			}
		}
	}
}
