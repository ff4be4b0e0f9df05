package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tenant statuses. Only active and trial tenants resolve for requests.
const (
	TenantStatusActive    = "active"
	TenantStatusInactive  = "inactive"
	TenantStatusSuspended = "suspended"
	TenantStatusTrial     = "trial"
)

// Tenant represents an isolated school. Tenants are owned by the platform
// and are the one record family not carrying a tenant_id themselves.
type Tenant struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	Name             string            `gorm:"size:255;not null" json:"name"`
	Slug             string            `gorm:"size:64;uniqueIndex;not null" json:"slug"`
	Domain           string            `gorm:"size:255" json:"domain,omitempty"`
	Status           string            `gorm:"size:32;not null;default:trial" json:"status"`
	SubscriptionPlan string            `gorm:"size:64;default:basic" json:"subscription_plan"`
	Settings         datatypes.JSONMap `gorm:"type:json" json:"settings"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Resolvable reports whether requests may resolve to this tenant.
func (t Tenant) Resolvable() bool {
	return t.Status == TenantStatusActive || t.Status == TenantStatusTrial
}
