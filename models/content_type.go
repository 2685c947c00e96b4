package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ContentType is the discriminant classifying a blog post's media.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
	ContentPhoto ContentType = "photo"
	ContentMixed ContentType = "mixed"
)

// ContentTypes lists every content type in display order.
var ContentTypes = []ContentType{ContentText, ContentVideo, ContentPhoto, ContentMixed}

// ParseContentType accepts the four known values. An empty string maps to
// text; anything else is an error.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(s); ct {
	case "":
		return ContentText, nil
	case ContentText, ContentVideo, ContentPhoto, ContentMixed:
		return ct, nil
	default:
		return "", fmt.Errorf("unknown content type %q", s)
	}
}

// OrDefault returns text for the zero value.
func (c ContentType) OrDefault() ContentType {
	if c == "" {
		return ContentText
	}
	return c
}

func (c ContentType) Valid() bool {
	_, err := ParseContentType(string(c))
	return err == nil && c != ""
}

func (c *ContentType) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil {
		*c = ContentText
		return nil
	}
	ct, err := ParseContentType(*s)
	if err != nil {
		return err
	}
	*c = ct
	return nil
}

// Scan treats NULL as text so older rows without the column populated decode
// to a valid value.
func (c *ContentType) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = ContentText
	case string:
		*c = ContentType(v).OrDefault()
	case []byte:
		*c = ContentType(v).OrDefault()
	default:
		return fmt.Errorf("cannot scan %T into ContentType", src)
	}
	return nil
}

func (c ContentType) Value() (driver.Value, error) {
	return string(c.OrDefault()), nil
}
