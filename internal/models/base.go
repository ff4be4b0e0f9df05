package models

import "time"

// TenantModel is the embedded base for every tenant-scoped record. The
// tenant_id column is set once by the scoped repository and never updated
// through the application afterwards.
type TenantModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"index;not null" json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetTenantID returns the owning tenant.
func (m *TenantModel) GetTenantID() uint { return m.TenantID }

// SetTenantID binds the record to a tenant.
func (m *TenantModel) SetTenantID(id uint) { m.TenantID = id }
