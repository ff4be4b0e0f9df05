package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/edustack/edustack-api/internal/models"
)

// StudentRepository is the tenant-scoped student store.
type StudentRepository struct {
	*Scoped[models.Student, *models.Student]
}

// NewStudentRepository binds a student repository to one tenant.
func NewStudentRepository(db *gorm.DB, tenantID uint) *StudentRepository {
	return &StudentRepository{Scoped: NewScoped[models.Student](db, tenantID)}
}

// StudentFilter is the closed set of filterable student fields.
type StudentFilter struct {
	Search  string
	Grade   string
	Section string
	Status  string
}

func (f StudentFilter) conditions() []Condition {
	var conds []Condition
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		conds = append(conds, Condition{
			Query: "LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(admission_no) LIKE ?",
			Args:  []interface{}{pattern, pattern, pattern},
		})
	}
	if f.Grade != "" {
		conds = append(conds, Condition{Query: "grade = ?", Args: []interface{}{f.Grade}})
	}
	if f.Section != "" {
		conds = append(conds, Condition{Query: "section = ?", Args: []interface{}{f.Section}})
	}
	if f.Status != "" {
		conds = append(conds, Condition{Query: "status = ?", Args: []interface{}{f.Status}})
	}
	return conds
}

// List returns one page of students matching the filter.
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter, page, pageSize int) (Page[models.Student], error) {
	return r.Scoped.List(ctx, filter.conditions(), "last_name ASC, first_name ASC", page, pageSize)
}

// CountByFilter counts students matching the filter in this tenant.
func (r *StudentRepository) CountByFilter(ctx context.Context, filter StudentFilter) (int64, error) {
	return r.Count(ctx, filter.conditions())
}
