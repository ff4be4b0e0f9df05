package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// AuditLogRepository is the append-only, tenant-scoped audit trail. The
// application path exposes no update or delete on audit rows.
type AuditLogRepository struct {
	scoped *Scoped[models.AuditLog, *models.AuditLog]
}

// NewAuditLogRepository binds an audit log repository to one tenant.
func NewAuditLogRepository(db *gorm.DB, tenantID uint) *AuditLogRepository {
	return &AuditLogRepository{scoped: NewScoped[models.AuditLog](db, tenantID)}
}

// Create appends one audit row under the bound tenant.
func (r *AuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.scoped.Create(ctx, entry)
}

// AuditLogFilter is the closed set of filterable audit fields.
type AuditLogFilter struct {
	UserID     uint
	Action     string
	EntityType string
	EntityID   uint
	From       *time.Time
	To         *time.Time
}

func (f AuditLogFilter) conditions() []Condition {
	var conds []Condition
	if f.UserID != 0 {
		conds = append(conds, Condition{Query: "user_id = ?", Args: []interface{}{f.UserID}})
	}
	if f.Action != "" {
		conds = append(conds, Condition{Query: "action = ?", Args: []interface{}{f.Action}})
	}
	if f.EntityType != "" {
		conds = append(conds, Condition{Query: "entity_type = ?", Args: []interface{}{f.EntityType}})
	}
	if f.EntityID != 0 {
		conds = append(conds, Condition{Query: "entity_id = ?", Args: []interface{}{f.EntityID}})
	}
	if f.From != nil {
		conds = append(conds, Condition{Query: "created_at >= ?", Args: []interface{}{*f.From}})
	}
	if f.To != nil {
		conds = append(conds, Condition{Query: "created_at <= ?", Args: []interface{}{*f.To}})
	}
	return conds
}

// List returns one page of audit rows, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filter AuditLogFilter, page, pageSize int) (Page[models.AuditLog], error) {
	return r.scoped.List(ctx, filter.conditions(), "created_at DESC", page, pageSize)
}
