package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded by the recorder.
const (
	AuditActionCreate           = "create"
	AuditActionUpdate           = "update"
	AuditActionDelete           = "delete"
	AuditActionSoftDelete       = "soft_delete"
	AuditActionRegister         = "register"
	AuditActionLogin            = "login"
	AuditActionLogout           = "logout"
	AuditActionPasswordChange   = "password_change"
	AuditActionPermissionChange = "permission_change"
)

// AuditLog is an immutable who-did-what-when record. Rows are only ever
// inserted through the application; retention cleanup happens elsewhere.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	TenantID   uint              `gorm:"index;not null" json:"tenant_id"`
	UserID     *uint             `gorm:"index" json:"user_id"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	EntityType string            `gorm:"size:64;index;not null" json:"entity_type"`
	EntityID   *uint             `gorm:"index" json:"entity_id"`
	Before     datatypes.JSONMap `gorm:"type:json" json:"before,omitempty"`
	After      datatypes.JSONMap `gorm:"type:json" json:"after,omitempty"`
	IPAddress  string            `gorm:"size:64" json:"ip_address"`
	UserAgent  string            `gorm:"size:512" json:"user_agent"`
	Context    datatypes.JSONMap `gorm:"type:json" json:"context,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// GetTenantID returns the owning tenant.
func (a *AuditLog) GetTenantID() uint { return a.TenantID }

// SetTenantID binds the record to a tenant.
func (a *AuditLog) SetTenantID(id uint) { a.TenantID = id }
