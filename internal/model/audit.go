package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequest   = "CREATE_REQUEST"
	ActionEditRequest     = "EDIT_REQUEST"
	ActionApproveRequest  = "APPROVE_REQUEST"
	ActionCancelRequest   = "CANCEL_REQUEST"
	ActionFinalizeRequest = "FINALIZE_REQUEST"

	ActionAddProposal    = "ADD_PROPOSAL"
	ActionEditProposal   = "EDIT_PROPOSAL"
	ActionSelectProposal = "SELECT_PROPOSAL"
	ActionRunAnalysis    = "RUN_ANALYSIS"

	// Settings surface
	ActionUpdatePermissions = "UPDATE_PERMISSIONS"
	ActionCreateSupplier    = "CREATE_SUPPLIER"
	ActionDeleteSupplier    = "DELETE_SUPPLIER"
	ActionCreateCostCenter  = "CREATE_COST_CENTER"
	ActionDeleteCostCenter  = "DELETE_COST_CENTER"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
