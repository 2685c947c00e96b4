package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DefaultPublicationType is used when a publication is saved without a type.
const DefaultPublicationType = "Journal Article"

// Publication represents a published academic work
type Publication struct {
	ID              uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title           string         `json:"title" db:"title" gorm:"column:title;type:text;not null"`
	Publisher       string         `json:"publisher" db:"publisher" gorm:"column:publisher;type:text;not null"`
	PublicationDate datatypes.Date `json:"publication_date" db:"publication_date" gorm:"column:publication_date;not null"`
	ISSN            *string        `json:"issn,omitempty" db:"issn" gorm:"column:issn;type:text"`
	Description     *string        `json:"description,omitempty" db:"description" gorm:"column:description;type:text"`
	Type            string         `json:"type" db:"type" gorm:"column:type;type:text;default:'Journal Article'"`
	URL             *string        `json:"url,omitempty" db:"url" gorm:"column:url;type:text"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Publication) TableName() string { return "publications" }

func (p Publication) GetID() uuid.UUID { return p.ID }

func (p *Publication) Normalize() {
	if p.Type == "" {
		p.Type = DefaultPublicationType
	}
}
