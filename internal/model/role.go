package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user role with associated permissions
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	IsSystem    bool         `gorm:"default:false" json:"is_system"` // Prevent deletion of built-in roles
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission represents a single permission that can be assigned to roles
type Permission struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"` // e.g. "request_approve"
	Name  string    `gorm:"type:varchar(255);not null" json:"name"`
	Group string    `gorm:"type:varchar(50);not null;index" json:"group"` // "requests", "quotations", "settings"...
}

// Permission key constants — the closed capability set gating workflow actions.
const (
	PermDashboardView   = "dashboard_view"
	PermRequestView     = "request_view"
	PermRequestCreate   = "request_create"
	PermRequestEdit     = "request_edit" // includes cancel
	PermRequestApprove  = "request_approve"
	PermQuotationView   = "quotation_view"
	PermQuotationEdit   = "quotation_edit_proposals"
	PermQuotationFinal  = "quotation_finalize"
	PermCompletedView   = "completed_view"
	PermCompletedExport = "completed_export"
	PermSettingsView    = "settings_view"
	PermSettingsEdit    = "settings_edit"
)

// RoleAllows is the single permission decision point. An unauthenticated or
// unknown role is denied; admin is allowed unconditionally — even when the
// stored admin record was explicitly emptied, the override wins. Every other
// role gets a plain membership test against its granted codes.
func RoleAllows(role string, granted []string, key string) bool {
	if role == "" {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	for _, code := range granted {
		if code == key {
			return true
		}
	}
	return false
}
