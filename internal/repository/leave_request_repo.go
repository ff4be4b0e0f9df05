package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// LeaveRequestRepository is the tenant-scoped leave request store.
type LeaveRequestRepository struct {
	*Scoped[models.LeaveRequest, *models.LeaveRequest]
}

// NewLeaveRequestRepository binds a leave request repository to one tenant.
func NewLeaveRequestRepository(db *gorm.DB, tenantID uint) *LeaveRequestRepository {
	return &LeaveRequestRepository{Scoped: NewScoped[models.LeaveRequest](db, tenantID)}
}

// LeaveRequestFilter is the closed set of filterable leave request fields.
type LeaveRequestFilter struct {
	RequesterID uint
	Status      string
}

func (f LeaveRequestFilter) conditions() []Condition {
	var conds []Condition
	if f.RequesterID != 0 {
		conds = append(conds, Condition{Query: "requester_id = ?", Args: []interface{}{f.RequesterID}})
	}
	if f.Status != "" {
		conds = append(conds, Condition{Query: "status = ?", Args: []interface{}{f.Status}})
	}
	return conds
}

// List returns one page of leave requests, newest first.
func (r *LeaveRequestRepository) List(ctx context.Context, filter LeaveRequestFilter, page, pageSize int) (Page[models.LeaveRequest], error) {
	return r.Scoped.List(ctx, filter.conditions(), "created_at DESC", page, pageSize)
}
