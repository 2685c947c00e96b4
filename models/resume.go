package models

import (
	"time"

	"github.com/google/uuid"
)

// Resume is the single row holding the current CV document
type Resume struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	PDFURL    *string   `json:"pdf_url" db:"pdf_url" gorm:"column:pdf_url;type:text"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Resume) TableName() string { return "resume" }

func (r Resume) GetID() uuid.UUID { return r.ID }

// Experience is one entry of the professional timeline
type Experience struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Position    string    `json:"position" db:"position" gorm:"column:position;type:text;not null"`
	Institution string    `json:"institution" db:"institution" gorm:"column:institution;type:text;not null"`
	Duration    string    `json:"duration" db:"duration" gorm:"column:duration;type:text;not null"`
	Description *string   `json:"description,omitempty" db:"description" gorm:"column:description;type:text"`
	OrderIndex  int       `json:"order_index" db:"order_index" gorm:"column:order_index;not null;default:0"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func (Experience) TableName() string { return "experience" }

func (e Experience) GetID() uuid.UUID { return e.ID }
