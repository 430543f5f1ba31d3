package model

import (
	"time"

	"github.com/google/uuid"
)

// CostCenter is a budget bucket requests point at. Deleting one leaves any
// referencing request with a dangling id — there is deliberately no
// restrict/cascade here until the desired policy is settled.
type CostCenter struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label renders the cost center the way reports display it.
func (c *CostCenter) Label() string {
	return c.Code + " - " + c.Name
}
