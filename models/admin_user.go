package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is an account allowed into the admin dashboard
type AdminUser struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Username     string    `json:"username" db:"username" gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"column:password_hash;type:text;not null"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (AdminUser) TableName() string { return "admin_users" }

func (u AdminUser) GetID() uuid.UUID { return u.ID }

// Count is the row shape of a count-only query.
type Count struct {
	Count int64 `json:"count" gorm:"column:count"`
}
