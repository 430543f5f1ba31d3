package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a directory entry. Proposals reference suppliers by name only,
// so directory edits never rewrite historical quotes.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Category     string    `gorm:"type:varchar(100)" json:"category"`
	ContactEmail string    `gorm:"type:varchar(255)" json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
